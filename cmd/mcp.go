package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pulseboard/pkg/config"
	"pulseboard/pkg/mcp"
	"pulseboard/pkg/server"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the pulseboard MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents query stored
points and statistics via standard tools. Storage logs go to stderr,
leaving stdout to the protocol.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		store, err := server.OpenStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()

		return mcp.StartMCPServer(store)
	},
}
