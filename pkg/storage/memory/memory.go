package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
)

// Store keeps points in memory. Data is lost on restart.
// Useful for testing and development.
type Store struct {
	points []point.Point
	nextID int64
	mu     sync.RWMutex
}

// New creates an in-memory storage backend
func New() *Store {
	return &Store{
		points: make([]point.Point, 0, 10000),
	}
}

// Insert stores one point and returns its id
func (s *Store) Insert(ctx context.Context, ts time.Time, value float64, meta json.RawMessage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p := point.Point{
		ID: s.nextID,
		// Microsecond precision, same as the SQL backends.
		Timestamp: time.UnixMicro(ts.UnixMicro()).UTC(),
		Value:     value,
		Meta:      point.NormalizeMeta(meta),
	}
	s.points = append(s.points, p)
	return p.ID, nil
}

// Query retrieves points within the requested range, sorted by timestamp
// then id
func (s *Store) Query(ctx context.Context, req storage.QueryRequest) ([]point.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []point.Point

	for _, p := range s.points {
		if req.Since != nil && p.Timestamp.Before(*req.Since) {
			continue
		}
		if req.Until != nil && p.Timestamp.After(*req.Until) {
			continue
		}
		results = append(results, p)
	}

	// Points arrive with arbitrary client timestamps, so insertion order
	// is not query order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Timestamp.Equal(results[j].Timestamp) {
			return results[i].ID < results[j].ID
		}
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	return results, nil
}

// Close is a no-op for memory storage
func (s *Store) Close() error {
	return nil
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{
		TotalPoints: uint64(len(s.points)),
	}

	if len(s.points) == 0 {
		return stats, nil
	}

	oldest := s.points[0].Timestamp
	newest := s.points[0].Timestamp
	var bytes uint64

	for _, p := range s.points {
		if p.Timestamp.Before(oldest) {
			oldest = p.Timestamp
		}
		if p.Timestamp.After(newest) {
			newest = p.Timestamp
		}
		// Rough estimate: fixed fields plus metadata payload.
		bytes += 32 + uint64(len(p.Meta))
	}

	stats.OldestPoint = oldest
	stats.NewestPoint = newest
	stats.SizeBytes = bytes

	return stats, nil
}
