package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"

	"github.com/socialgate/socialgate/internal/core"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, dependency and platform details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := GetAppIdentity()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s %s\n", identity.BinaryName, versionInfo.Version)
		if !extended {
			return nil
		}

		fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
		fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
		fmt.Fprintf(out, "Go: %s\n\n", runtime.Version())

		deps := crucible.GetVersion()
		fmt.Fprintf(out, "Gofulmen: %s\n", deps.Gofulmen)
		fmt.Fprintf(out, "Crucible: %s\n\n", deps.Crucible)

		names := make([]string, 0, len(core.Platforms))
		for _, p := range core.Platforms {
			names = append(names, p.DisplayName())
		}
		fmt.Fprintf(out, "Platforms: %s\n", strings.Join(names, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
