package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"pulseboard/pkg/storage"
)

func TestMemoryStore_InsertAndQuery(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	// Insert a couple of points
	id1, err := store.Insert(ctx, now, 12.3, nil)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id2, err := store.Insert(ctx, now.Add(time.Second), 4.5, json.RawMessage(`{"host":"web-1"}`))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if id1 != 1 || id2 != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", id1, id2)
	}

	// Query everything
	results, err := store.Query(ctx, storage.QueryRequest{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(results))
	}
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Errorf("Expected ids in order 1,2, got %d,%d", results[0].ID, results[1].ID)
	}
	if string(results[1].Meta) != `{"host":"web-1"}` {
		t.Errorf("Expected meta to round-trip verbatim, got %s", results[1].Meta)
	}
	if results[0].Meta != nil {
		t.Errorf("Expected nil meta, got %s", results[0].Meta)
	}
}

func TestMemoryStore_QueryTimeRange(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	// Insert points one minute apart
	for i := 0; i < 5; i++ {
		if _, err := store.Insert(ctx, base.Add(time.Duration(i)*time.Minute), float64(i), nil); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	since := base.Add(1 * time.Minute)
	until := base.Add(3 * time.Minute)
	results, err := store.Query(ctx, storage.QueryRequest{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// Bounds are inclusive: minutes 1, 2 and 3
	if len(results) != 3 {
		t.Fatalf("Expected 3 points in range, got %d", len(results))
	}
	if !results[0].Timestamp.Equal(since) {
		t.Errorf("Expected first point at %v, got %v", since, results[0].Timestamp)
	}
	if !results[2].Timestamp.Equal(until) {
		t.Errorf("Expected last point at %v, got %v", until, results[2].Timestamp)
	}
}

func TestMemoryStore_QueryOpenBounds(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		if _, err := store.Insert(ctx, base.Add(time.Duration(i)*time.Hour), float64(i), nil); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	// Only a lower bound
	since := base.Add(2 * time.Hour)
	results, err := store.Query(ctx, storage.QueryRequest{Since: &since})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 points with open upper bound, got %d", len(results))
	}

	// Only an upper bound
	until := base.Add(1 * time.Hour)
	results, err = store.Query(ctx, storage.QueryRequest{Until: &until})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 points with open lower bound, got %d", len(results))
	}
}

func TestMemoryStore_QueryInvertedRange(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := store.Insert(ctx, now, 1, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// since after until yields an empty result, not an error
	since := now.Add(time.Hour)
	until := now.Add(-time.Hour)
	results, err := store.Query(ctx, storage.QueryRequest{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result for inverted range, got %d points", len(results))
	}
}

func TestMemoryStore_QueryOrdersByTimestampThenID(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of timestamp order, with a tie on the middle timestamp
	if _, err := store.Insert(ctx, base.Add(time.Minute), 1, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, base, 2, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, base.Add(time.Minute), 3, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.Query(ctx, storage.QueryRequest{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(results))
	}
	// base first, then the two tied timestamps in id order
	if results[0].ID != 2 || results[1].ID != 1 || results[2].ID != 3 {
		t.Errorf("Expected id order 2,1,3, got %d,%d,%d", results[0].ID, results[1].ID, results[2].ID)
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := store.Insert(ctx, base.Add(time.Hour), 1, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := store.Insert(ctx, base, 2, nil); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalPoints != 2 {
		t.Errorf("Expected 2 total points, got %d", stats.TotalPoints)
	}
	if !stats.OldestPoint.Equal(base) {
		t.Errorf("Expected oldest point at %v, got %v", base, stats.OldestPoint)
	}
	if !stats.NewestPoint.Equal(base.Add(time.Hour)) {
		t.Errorf("Expected newest point at %v, got %v", base.Add(time.Hour), stats.NewestPoint)
	}
}

func TestMemoryStore_ConcurrentInserts(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Insert(ctx, now, float64(i), nil); err != nil {
				t.Errorf("Insert failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	results, err := store.Query(ctx, storage.QueryRequest{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 10 {
		t.Fatalf("Expected 10 points from concurrent inserts, got %d", len(results))
	}

	// Ids must be unique
	seen := make(map[int64]bool)
	for _, p := range results {
		if seen[p.ID] {
			t.Errorf("Duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestMemoryStore_EmptyQuery(t *testing.T) {
	store := New()
	defer store.Close()

	ctx := context.Background()

	results, err := store.Query(ctx, storage.QueryRequest{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 points from empty storage, got %d", len(results))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalPoints != 0 {
		t.Errorf("Expected 0 total points, got %d", stats.TotalPoints)
	}
}
