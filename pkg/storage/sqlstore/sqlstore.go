// Package sqlstore implements data point storage on SQLite, PostgreSQL
// or MySQL through database/sql.
//
// One implementation covers all three backends; only placeholder syntax,
// id retrieval and the size query differ. Timestamps are stored as Unix
// microseconds in a BIGINT column, which keeps range scans a plain
// integer comparison on every backend.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (no cgo)

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
)

// Store persists points in a relational database.
type Store struct {
	db      *sql.DB
	backend storage.Backend
}

// New opens the database for the given backend, verifies the connection
// and applies pending schema migrations.
func New(backend storage.Backend, dsn string) (*Store, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}

	if backend == storage.BackendSQLite {
		// Limit SQLite to a single open connection to avoid "database
		// is locked" errors.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", backend, err)
	}

	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, backend: backend}, nil
}

func driverFor(backend storage.Backend) (string, error) {
	switch backend {
	case storage.BackendSQLite:
		return "sqlite", nil
	case storage.BackendPostgres:
		return "pgx", nil
	case storage.BackendMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("backend %s is not SQL-backed", backend)
	}
}

// Insert appends one point and returns its database-assigned id.
func (s *Store) Insert(ctx context.Context, ts time.Time, value float64, meta json.RawMessage) (int64, error) {
	var metaArg any
	if m := point.NormalizeMeta(meta); m != nil {
		metaArg = string(m)
	}
	usec := ts.UTC().UnixMicro()

	if s.backend == storage.BackendPostgres {
		// pgx exposes no LastInsertId; use RETURNING instead.
		var id int64
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO data_points (ts, value, meta) VALUES ($1, $2, $3) RETURNING id`,
			usec, value, metaArg,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert point: %w", err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO data_points (ts, value, meta) VALUES (?, ?, ?)`,
		usec, value, metaArg,
	)
	if err != nil {
		return 0, fmt.Errorf("insert point: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// Query retrieves points within the requested range, ordered by timestamp
// then id.
func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]point.Point, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, ts, value, meta FROM data_points`)

	var conds []string
	if req.Since != nil {
		args = append(args, req.Since.UTC().UnixMicro())
		conds = append(conds, "ts >= "+s.placeholder(len(args)))
	}
	if req.Until != nil {
		args = append(args, req.Until.UTC().UnixMicro())
		conds = append(conds, "ts <= "+s.placeholder(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY ts ASC, id ASC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var results []point.Point
	for rows.Next() {
		var (
			p    point.Point
			usec int64
			meta sql.NullString
		)
		if err := rows.Scan(&p.ID, &usec, &p.Value, &meta); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		p.Timestamp = time.UnixMicro(usec).UTC()
		if meta.Valid {
			p.Meta = json.RawMessage(meta.String)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return results, nil
}

// placeholder returns the n-th parameter placeholder for the backend's
// SQL dialect.
func (s *Store) placeholder(n int) string {
	if s.backend == storage.BackendPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Stats returns storage statistics.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data_points`).Scan(&stats.TotalPoints); err != nil {
		return nil, fmt.Errorf("count points: %w", err)
	}

	if stats.TotalPoints > 0 {
		var oldest, newest int64
		if err := s.db.QueryRowContext(ctx, `SELECT MIN(ts), MAX(ts) FROM data_points`).Scan(&oldest, &newest); err != nil {
			return nil, fmt.Errorf("scan time range: %w", err)
		}
		stats.OldestPoint = time.UnixMicro(oldest).UTC()
		stats.NewestPoint = time.UnixMicro(newest).UTC()
	}

	if size, err := s.sizeBytes(ctx); err == nil {
		stats.SizeBytes = size
	}

	return stats, nil
}

// sizeBytes measures on-disk size where the backend can report it.
func (s *Store) sizeBytes(ctx context.Context) (uint64, error) {
	var (
		query string
		size  sql.NullInt64
	)
	switch s.backend {
	case storage.BackendSQLite:
		query = `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`
	case storage.BackendPostgres:
		query = `SELECT pg_total_relation_size('data_points')`
	case storage.BackendMySQL:
		query = `SELECT data_length + index_length FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = 'data_points'`
	default:
		return 0, nil
	}
	if err := s.db.QueryRowContext(ctx, query).Scan(&size); err != nil {
		return 0, err
	}
	if !size.Valid || size.Int64 < 0 {
		return 0, nil
	}
	return uint64(size.Int64), nil
}

// Close cleanly shuts down the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
