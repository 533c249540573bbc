/*
Package storage provides the pluggable storage abstraction for data points.

# Storage Interface

Pulseboard uses an interface-based design to support multiple storage
backends:

  - memory: In-memory storage for testing and ephemeral workloads
  - sqlstore: SQLite, PostgreSQL or MySQL through database/sql
  - badger: BadgerDB (LSM tree + Snappy compression) embedded storage

All backends implement the Store interface:

	type Store interface {
	    Insert(ctx context.Context, ts time.Time, value float64, meta json.RawMessage) (int64, error)
	    Query(ctx context.Context, req QueryRequest) ([]point.Point, error)
	    Stats(ctx context.Context) (*Stats, error)
	    Close() error
	}

# Backend Selection

The backend is chosen from a single database URL (DATABASE_URL):

	sqlite://data.db            SQLite file (also the default, and what a
	                            bare path selects)
	postgres://user@host/db     PostgreSQL via pgx
	mysql://user@tcp(host)/db   MySQL via go-sql-driver
	badger:///var/lib/pb        BadgerDB directory
	memory://                   In-memory, nothing persisted

ParseURL performs the split; the server wires the matching backend at
startup. SQL backends run their schema migrations on open.

# Ordering Guarantees

Every backend returns Query results sorted by timestamp, then by id for
points sharing a timestamp. Ids are assigned in insertion order, so the
tie-break reflects arrival order. Timestamps are stored at microsecond
precision; sub-microsecond input is truncated on insert so all backends
agree on range boundaries.

# Usage Example

	import (
	    "context"

	    "pulseboard/pkg/storage"
	    "pulseboard/pkg/storage/sqlstore"
	)

	store, err := sqlstore.New(storage.BackendSQLite, "data.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	// Insert a point
	id, err := store.Insert(ctx, time.Now(), 12.3, json.RawMessage(`{"host":"web-1"}`))

	// Query a range (nil bound = unbounded)
	since := time.Now().Add(-1 * time.Hour)
	points, err := store.Query(ctx, storage.QueryRequest{Since: &since})

	// Get statistics
	stats, err := store.Stats(ctx)
	fmt.Printf("Total points: %d\n", stats.TotalPoints)

# See Also

  - memory.New() for in-memory storage
  - sqlstore.New() for SQL-backed storage
  - badger.New() for embedded BadgerDB storage
*/
package storage
