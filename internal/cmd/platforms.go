package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/socialgate/socialgate/internal/output"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List platforms, their actions and throttles",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		rendered, err := output.NewFormatter(format).FormatPlatforms(gateway.Describe(cmd.Context()))
		if err != nil {
			return err
		}

		sink, err := resolveSink(cmd, format, "platforms")
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
	addOutputFlags(platformsCmd, "table|json|yaml")
}
