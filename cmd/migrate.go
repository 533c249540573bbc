package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pulseboard/pkg/config"
	"pulseboard/pkg/storage"
	"pulseboard/pkg/storage/sqlstore"
)

var migrateTargetVersion int

// migrateCmd steps the SQL schema to a target version.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations for SQL backends",
	Long: `Bring the configured SQL database to the target schema version.

The server migrates to the latest version on startup; this command is the
operator-facing escape hatch for stepping to a specific version or rolling
back. Badger and memory backends have no schema and are rejected.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		backend, dsn, err := storage.ParseURL(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		switch backend {
		case storage.BackendSQLite, storage.BackendPostgres, storage.BackendMySQL:
		default:
			return fmt.Errorf("backend %s has no schema migrations", backend)
		}

		return sqlstore.Migrate(backend, dsn, migrateTargetVersion)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateTargetVersion, "version", -1, "Target migration version (-1 means latest, 0 rolls back everything)")
}
