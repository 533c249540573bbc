package storage

import (
	"context"
	"encoding/json"
	"time"

	"pulseboard/pkg/point"
)

// Store defines the interface for data point storage backends.
// Implementations: memory (testing), sqlstore (SQLite/Postgres/MySQL), badger (embedded LSM)
type Store interface {
	// Insert appends one point and returns its assigned id. Ids are
	// positive, unique, and increase in insertion order.
	Insert(ctx context.Context, ts time.Time, value float64, meta json.RawMessage) (int64, error)

	// Query retrieves points within a time range, ordered by timestamp
	// then id. Both bounds are inclusive and a nil bound leaves that
	// side open. An inverted range yields an empty result, not an error.
	Query(ctx context.Context, req QueryRequest) ([]point.Point, error)

	// Stats returns storage statistics
	Stats(ctx context.Context) (*Stats, error)

	// Close cleanly shuts down the storage
	Close() error
}

// QueryRequest bounds a range scan over stored points
type QueryRequest struct {
	// Inclusive lower bound, nil = unbounded
	Since *time.Time

	// Inclusive upper bound, nil = unbounded
	Until *time.Time
}

// Stats provides storage health and usage info
type Stats struct {
	// Total points stored
	TotalPoints uint64

	// Oldest point timestamp (zero time when empty)
	OldestPoint time.Time

	// Newest point timestamp (zero time when empty)
	NewestPoint time.Time

	// Storage size in bytes (zero on backends that cannot measure it)
	SizeBytes uint64
}
