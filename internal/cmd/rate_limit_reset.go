package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/output"
)

var (
	rateLimitResetAll       bool
	rateLimitResetPlatforms []string
	rateLimitResetYes       bool
	rateLimitResetDryRun    bool
)

type rateLimitResetResult struct {
	Platforms []core.Platform `json:"platforms"`
	Cleared   int             `json:"cleared"`
	DryRun    bool            `json:"dry_run"`
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the recorded calls of one or more platform windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveOutputFormat(cmd)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		targets, err := resetTargets(rateLimitResetAll, rateLimitResetPlatforms)
		if err != nil {
			return err
		}
		if rateLimitResetAll && !rateLimitResetYes && !rateLimitResetDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
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

		result := rateLimitResetResult{Platforms: targets, DryRun: rateLimitResetDryRun}
		if !rateLimitResetDryRun {
			for _, p := range targets {
				limiter := gateway.Limiter(p)
				if limiter == nil {
					continue
				}
				if err := limiter.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("reset %s: %w", p, err)
				}
				result.Cleared++
			}
		}

		sink, err := resolveSink(cmd, format, "rate-limit.reset")
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		return writeRateLimitResetResult(format, sink.writer, result)
	},
}

// resetTargets resolves --all and --platform into a platform list.
func resetTargets(all bool, names []string) ([]core.Platform, error) {
	if all && len(names) > 0 {
		return nil, errors.New("--all and --platform are mutually exclusive")
	}
	if all {
		return append([]core.Platform(nil), core.Platforms...), nil
	}
	if len(names) == 0 {
		return nil, errors.New("specify --platform or --all")
	}

	seen := make(map[core.Platform]bool, len(names))
	targets := make([]core.Platform, 0, len(names))
	for _, name := range names {
		p, err := core.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		targets = append(targets, p)
	}
	return targets, nil
}

func writeRateLimitResetResult(format output.Format, w io.Writer, result rateLimitResetResult) error {
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	names := make([]string, 0, len(result.Platforms))
	for _, p := range result.Platforms {
		names = append(names, string(p))
	}
	if result.DryRun {
		_, err := fmt.Fprintf(w, "Would reset %d window(s): %s\n", len(names), strings.Join(names, ", "))
		return err
	}
	_, err := fmt.Fprintf(w, "Reset %d/%d window(s): %s\n", result.Cleared, len(names), strings.Join(names, ", "))
	return err
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetAll, "all", false, "Reset every platform window")
	rateLimitResetCmd.Flags().StringSliceVar(&rateLimitResetPlatforms, "platform", nil, "Platform to reset (repeatable)")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetYes, "yes", false, "Confirm destructive reset")
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetDryRun, "dry-run", false, "Show what would be reset")
	addOutputFlags(rateLimitResetCmd, "table|json")
}
