package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"pulseboard/pkg/server"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pulseboard.",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pulseboard\n")
		cmd.Printf("  Version: %s\n", server.Version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
