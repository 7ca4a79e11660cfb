package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/output"
)

var callParams []string

var callCmd = &cobra.Command{
	Use:   "call <platform> <action>",
	Short: "Run one gateway action from the shell",
	Long: `Run one action through the same validation, rate limiter and formatters
the HTTP gateway uses, and print the success envelope.

Examples:
  socialgate call youtube video_info --param video_id=dQw4w9WgXcQ
  socialgate call twitter search_tweets --param query=golang -o json
  socialgate call facebook pages --param access_token=$FB_TOKEN -o yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := core.ParsePlatform(args[0])
		if err != nil {
			return err
		}
		action := strings.TrimSpace(args[1])

		params, err := parseParams(callParams)
		if err != nil {
			return err
		}
		params["action"] = action

		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gateway, st, err := buildGateway(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		envelope, err := gateway.Dispatch(cmd.Context(), platform, action, params)
		if err != nil {
			return describeActionError(err)
		}

		rendered, err := output.NewFormatter(format).FormatEnvelope(envelope)
		if err != nil {
			return err
		}

		sink, err := resolveSink(cmd, format, fmt.Sprintf("%s.%s", platform, action))
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

// parseParams turns repeated key=value flags into action parameters.
func parseParams(pairs []string) (core.Params, error) {
	params := make(core.Params, len(pairs)+1)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

// describeActionError renders a platform error the way the HTTP body would.
func describeActionError(err error) error {
	pe, ok := core.AsPlatformError(err)
	if !ok {
		return err
	}
	msg := fmt.Sprintf("%s (%d)", pe.Title, pe.StatusCode)
	if pe.Message != "" {
		msg += ": " + pe.Message
	}
	return fmt.Errorf("%s: %s", pe.Platform, msg)
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringArrayVar(&callParams, "param", nil, "action parameter as key=value (repeatable)")
	addOutputFlags(callCmd, "table|json|yaml")
}
