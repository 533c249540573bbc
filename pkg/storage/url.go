package storage

import (
	"fmt"
	"strings"
)

// Backend identifies a storage backend implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendBadger   Backend = "badger"
	BackendMemory   Backend = "memory"
)

// DefaultSQLitePath is the SQLite file used when a URL names no path.
const DefaultSQLitePath = "data.db"

// ParseURL splits a database URL into the backend it selects and the
// backend-specific DSN. Postgres URLs pass through whole because pgx
// consumes the URL form; the other schemes are stripped. An empty URL and
// a bare filesystem path both select SQLite.
func ParseURL(raw string) (Backend, string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return BackendSQLite, DefaultSQLitePath, nil
	case raw == "memory" || raw == "memory://":
		return BackendMemory, "", nil
	case strings.HasPrefix(raw, "sqlite:///"):
		// Three slashes mean a relative path, four an absolute one.
		return BackendSQLite, sqlitePath(strings.TrimPrefix(raw, "sqlite:///")), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return BackendSQLite, sqlitePath(strings.TrimPrefix(raw, "sqlite://")), nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return BackendPostgres, raw, nil
	case strings.HasPrefix(raw, "mysql://"):
		dsn := strings.TrimPrefix(raw, "mysql://")
		if dsn == "" {
			return "", "", fmt.Errorf("mysql URL %q has no DSN", raw)
		}
		return BackendMySQL, dsn, nil
	case strings.HasPrefix(raw, "badger://"):
		dir := strings.TrimPrefix(raw, "badger://")
		if dir == "" {
			return "", "", fmt.Errorf("badger URL %q has no directory", raw)
		}
		return BackendBadger, dir, nil
	case strings.Contains(raw, "://"):
		return "", "", fmt.Errorf("unsupported database URL %q", raw)
	default:
		// A bare path is a SQLite file.
		return BackendSQLite, raw, nil
	}
}

func sqlitePath(path string) string {
	if path == "" {
		return DefaultSQLitePath
	}
	return path
}
