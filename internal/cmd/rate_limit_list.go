package cmd

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/output"
)

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current window usage per platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
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

		usages := make([]core.RateLimitUsage, 0, len(core.Platforms))
		for _, info := range gateway.Describe(cmd.Context()) {
			usages = append(usages, info.Limit)
		}

		sink, err := resolveSink(cmd, format, "rate-limit.list")
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if format == output.FormatJSON {
			payload, err := json.MarshalIndent(usages, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(sink.writer, string(payload))
			return err
		}

		_, err = fmt.Fprint(sink.writer, ascii.DrawBox(renderUsageLines(usages), 0))
		return err
	},
}

func renderUsageLines(usages []core.RateLimitUsage) string {
	lines := []string{"Rate Limits", ""}
	if len(usages) == 0 {
		lines = append(lines, "(no platforms registered)")
		return strings.Join(lines, "\n")
	}
	for _, u := range usages {
		used := fmt.Sprintf("%d", u.Used)
		if u.Used < 0 {
			used = "?"
		}
		lines = append(lines, fmt.Sprintf("%s: used=%s/%d window=%s remaining=%d store=%s",
			u.Platform, used, u.MaxRequests, u.WindowText, u.Remaining(), u.Store))
	}
	return strings.Join(lines, "\n")
}

func init() {
	addOutputFlags(rateLimitListCmd, "table|json")
}
