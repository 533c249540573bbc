package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
)

// Exporter handles exporting points to various formats
type Exporter struct {
	store storage.Store
}

// NewExporter creates a new exporter
func NewExporter(store storage.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions configures the export operation
type ExportOptions struct {
	// Inclusive time range, nil bounds are open
	Since *time.Time
	Until *time.Time

	// Format: "json", "csv" or "parquet"
	Format string
}

// ExportResult contains stats about the export
type ExportResult struct {
	PointsExported int       `json:"points_exported"`
	TimeRange      string    `json:"time_range"`
	Format         string    `json:"format"`
	ExportedAt     time.Time `json:"exported_at"`
}

// ExportData is the JSON backup envelope written by ExportToJSON and read
// back by Importer.ImportFromJSON.
type ExportData struct {
	Metadata struct {
		ExportedAt time.Time  `json:"exported_at"`
		Since      *time.Time `json:"since"`
		Until      *time.Time `json:"until"`
		PointCount int        `json:"point_count"`
		Format     string     `json:"format"`
		Version    string     `json:"version"`
	} `json:"metadata"`
	Points []point.Point `json:"points"`
}

// parquetRow flattens a point for columnar export. Metadata stays a JSON
// string; absent metadata maps to a null column value.
type parquetRow struct {
	ID    int64     `parquet:"id,snappy"`
	Ts    time.Time `parquet:"ts,snappy"`
	Value float64   `parquet:"value,snappy"`
	Meta  *string   `parquet:"meta,optional,snappy"`
}

// ExportToJSON exports points as a JSON backup envelope to the given writer
func (e *Exporter) ExportToJSON(ctx context.Context, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	points, err := e.queryRange(ctx, opts)
	if err != nil {
		return nil, err
	}

	var exportData ExportData
	exportData.Points = points
	exportData.Metadata.ExportedAt = time.Now().UTC()
	exportData.Metadata.Since = opts.Since
	exportData.Metadata.Until = opts.Until
	exportData.Metadata.PointCount = len(points)
	exportData.Metadata.Format = "json"
	exportData.Metadata.Version = "1.0"

	// Encode as pretty JSON
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportData); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return e.result(len(points), "json", opts), nil
}

// ExportToCSV exports points as flat CSV to the given writer
func (e *Exporter) ExportToCSV(ctx context.Context, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	points, err := e.queryRange(ctx, opts)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "ts", "value", "meta"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range points {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.Timestamp.UTC().Format(point.TimeLayout),
			strconv.FormatFloat(p.Value, 'f', -1, 64),
			string(p.Meta), // empty cell when no metadata
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return e.result(len(points), "csv", opts), nil
}

// ExportToParquet exports points as a Parquet file to the given writer.
// The schema is inferred from the parquetRow struct tags.
func (e *Exporter) ExportToParquet(ctx context.Context, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	points, err := e.queryRange(ctx, opts)
	if err != nil {
		return nil, err
	}

	rows := make([]parquetRow, len(points))
	for i, p := range points {
		rows[i] = parquetRow{
			ID:    p.ID,
			Ts:    p.Timestamp.UTC(),
			Value: p.Value,
		}
		if p.Meta != nil {
			meta := string(p.Meta)
			rows[i].Meta = &meta
		}
	}

	writer := parquet.NewGenericWriter[parquetRow](w)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return e.result(len(points), "parquet", opts), nil
}

func (e *Exporter) queryRange(ctx context.Context, opts ExportOptions) ([]point.Point, error) {
	points, err := e.store.Query(ctx, storage.QueryRequest{Since: opts.Since, Until: opts.Until})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	if points == nil {
		points = []point.Point{}
	}
	return points, nil
}

func (e *Exporter) result(count int, format string, opts ExportOptions) *ExportResult {
	return &ExportResult{
		PointsExported: count,
		TimeRange:      formatTimeRange(opts.Since, opts.Until),
		Format:         format,
		ExportedAt:     time.Now().UTC(),
	}
}

// formatTimeRange renders an optionally-open range for logs and results
func formatTimeRange(since, until *time.Time) string {
	format := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s to %s", format(since), format(until))
}
