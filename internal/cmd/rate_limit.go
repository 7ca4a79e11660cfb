package cmd

import "github.com/spf13/cobra"

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect and reset per-platform throttle windows",
	Long: `Inspect and reset the sliding windows the gateway throttles upstream calls with.

With the default memory store every process keeps its own windows, so these
commands are only useful against a shared store (rate_limit.store: redis).`,
}

func init() {
	rateLimitCmd.AddCommand(rateLimitListCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
