// Package monitor samples store statistics in the background and
// publishes them as Prometheus gauges, so dashboards can watch growth
// without hammering the stats API.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"pulseboard/pkg/metrics"
	"pulseboard/pkg/storage"
)

// sampleInterval balances freshness against the cost of Stats, which
// runs COUNT(*) on the SQL backends.
const sampleInterval = 15 * time.Second

// StorageMonitor periodically reads store statistics and exports them
// through the metrics package.
type StorageMonitor struct {
	store    storage.Store
	interval time.Duration
}

// NewStorageMonitor creates a monitor for the given store.
func NewStorageMonitor(store storage.Store) *StorageMonitor {
	return &StorageMonitor{store: store, interval: sampleInterval}
}

// Run samples on a fixed interval until the context is canceled.
func (sm *StorageMonitor) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	// Prime the gauges so scrapes before the first tick see real numbers.
	sm.sample(ctx)

	for {
		select {
		case <-ticker.C:
			sm.sample(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (sm *StorageMonitor) sample(ctx context.Context) {
	stats, err := sm.store.Stats(ctx)
	if err != nil {
		// Shutdown cancels mid-sample; that's not worth a log line.
		if ctx.Err() == nil {
			log.Printf("⚠️  Storage stats sample failed: %v", err)
		}
		return
	}
	metrics.StoragePoints.Set(float64(stats.TotalPoints))
	metrics.StorageSizeBytes.Set(float64(stats.SizeBytes))
}
