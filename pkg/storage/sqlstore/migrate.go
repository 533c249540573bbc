package sqlstore

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migmysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migsqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"pulseboard/pkg/storage"
)

// Each backend keeps its own migration directory because the dialects do
// not share DDL.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// newMigrator builds a migrate instance for an already-open database.
func newMigrator(db *sql.DB, backend storage.Backend) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch backend {
	case storage.BackendSQLite:
		driver, err = migsqlite.WithInstance(db, &migsqlite.Config{})
	case storage.BackendPostgres:
		driver, err = migpostgres.WithInstance(db, &migpostgres.Config{})
	case storage.BackendMySQL:
		driver, err = migmysql.WithInstance(db, &migmysql.Config{})
	default:
		return nil, fmt.Errorf("no migrations for backend %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return nil, fmt.Errorf("access %s migrations: %w", backend, err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "pulseboard", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// migrateUp silently brings an open database to the latest schema. New
// runs this on every open so a fresh file is usable immediately.
func migrateUp(db *sql.DB, backend storage.Backend) error {
	m, err := newMigrator(db, backend)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Migrate opens the database and moves the schema to the target version,
// reporting progress on stdout.
//   - targetVersion < 0 migrates to the latest version.
//   - targetVersion == 0 rolls back all migrations.
//   - targetVersion > 0 migrates to that specific version.
func Migrate(backend storage.Backend, dsn string, targetVersion int) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if backend == storage.BackendSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to %s database: %w", backend, err)
	}

	m, err := newMigrator(db, backend)
	if err != nil {
		return err
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("read current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d, fix manually or force a version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
		if err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migrate to latest version: %w", err)
		}
		if err == migrate.ErrNoChange {
			fmt.Println("No migration needed. Database is already at the latest version.")
		} else {
			newVersion, _, _ := m.Version()
			fmt.Printf("Migrated from version %d to version %d\n", currentVersion, newVersion)
		}
	case targetVersion == 0:
		err = m.Down()
		if err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("roll back to version 0: %w", err)
		}
		if err == migrate.ErrNoChange {
			fmt.Println("No migration needed. Database is already at version 0.")
		} else {
			fmt.Printf("Rolled back from version %d to version 0\n", currentVersion)
		}
	default:
		err = m.Migrate(uint(targetVersion))
		if err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migrate to version %d: %w", targetVersion, err)
		}
		if err == migrate.ErrNoChange {
			fmt.Printf("No migration needed. Database is already at version %d.\n", targetVersion)
		} else {
			fmt.Printf("Migrated from version %d to version %d\n", currentVersion, targetVersion)
		}
	}

	return nil
}
