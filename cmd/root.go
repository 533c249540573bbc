// Package cmd defines the command-line interface for pulseboard.
package cmd

import (
	"github.com/spf13/cobra"

	"pulseboard/pkg/server"
)

// Commit and build date are set by the linker at release time.
var (
	commit = "none"
	date   = "unknown"
)

// rootCmd is the command-line entrypoint for all other commands. Running
// the bare binary starts the server, matching the single-command
// deployment the project started with.
var rootCmd = &cobra.Command{
	Use:           "pulseboard",
	Short:         "Collect, store and chart numeric data points over time.",
	Long:          `Pulseboard ingests timestamped numeric values over HTTP, stores them in SQLite, Postgres, MySQL or Badger, and serves a live dashboard, exports and a Prometheus endpoint.`,
	Version:       server.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
