package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pulseboard/pkg/config"
	"pulseboard/pkg/server"
)

// serveCmd runs the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pulseboard HTTP server",
	Long: `Start the HTTP server: point ingestion, range queries, export and
import, the live dashboard and the Prometheus endpoint. The server shuts
down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return server.Run(cfg)
}
