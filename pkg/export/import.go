package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
)

// Importer restores points from JSON backup files
type Importer struct {
	store storage.Store
}

// NewImporter creates a new importer
func NewImporter(store storage.Store) *Importer {
	return &Importer{store: store}
}

// ImportResult contains stats about the import operation
type ImportResult struct {
	PointsImported int       `json:"points_imported"`
	TimeRange      string    `json:"time_range"`
	ImportedAt     time.Time `json:"imported_at"`
	Errors         []string  `json:"errors,omitempty"`
}

// ImportFromJSON imports points from a JSON backup envelope. Invalid points
// are skipped and reported rather than failing the whole import; ids are
// reassigned by the receiving store.
func (im *Importer) ImportFromJSON(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if len(data.Points) == 0 {
		return &ImportResult{TimeRange: "empty", ImportedAt: time.Now().UTC()}, nil
	}

	var validationErrors []string
	var imported int
	var minTime, maxTime time.Time

	for i, p := range data.Points {
		if err := validateImportedPoint(p); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("point %d: %v", i, err))
			continue
		}

		if _, err := im.store.Insert(ctx, p.Timestamp, p.Value, p.Meta); err != nil {
			return nil, fmt.Errorf("failed to store point %d: %w", i, err)
		}

		if imported == 0 || p.Timestamp.Before(minTime) {
			minTime = p.Timestamp
		}
		if imported == 0 || p.Timestamp.After(maxTime) {
			maxTime = p.Timestamp
		}
		imported++
	}

	return &ImportResult{
		PointsImported: imported,
		TimeRange:      fmt.Sprintf("%s to %s", minTime.Format(time.RFC3339), maxTime.Format(time.RFC3339)),
		ImportedAt:     time.Now().UTC(),
		Errors:         validationErrors,
	}, nil
}

// validateImportedPoint validates a point before import
func validateImportedPoint(p point.Point) error {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("value is not a finite number")
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("timestamp cannot be zero")
	}
	return nil
}
