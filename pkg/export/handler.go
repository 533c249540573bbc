package export

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"pulseboard/pkg/query"
	"pulseboard/pkg/storage"
)

// Handler handles export/import HTTP endpoints
type Handler struct {
	exporter *Exporter
	importer *Importer
}

// NewHandler creates a new export/import handler
func NewHandler(store storage.Store) *Handler {
	return &Handler{
		exporter: NewExporter(store),
		importer: NewImporter(store),
	}
}

// HandleExport handles GET /api/export
// Query params:
//   - format: "json", "csv" or "parquet" (default: json)
//   - since, until: optional range bounds, same normalizer as /api/data
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" && format != "parquet" {
		http.Error(w, "Invalid format. Must be 'json', 'csv' or 'parquet'", http.StatusBadRequest)
		return
	}

	bounds := query.BoundsFromRequest(r)
	opts := ExportOptions{
		Since:  bounds.Since,
		Until:  bounds.Until,
		Format: format,
	}

	timestamp := time.Now().Format("20060102-150405")
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	case "parquet":
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pulseboard-export-%s.%s", timestamp, format))

	ctx := r.Context()
	var result *ExportResult
	var err error

	switch format {
	case "json":
		result, err = h.exporter.ExportToJSON(ctx, w, opts)
	case "csv":
		result, err = h.exporter.ExportToCSV(ctx, w, opts)
	case "parquet":
		result, err = h.exporter.ExportToParquet(ctx, w, opts)
	}

	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Exported %d points (%s) from %s", result.PointsExported, format, result.TimeRange)
}

// HandleImport handles POST /api/import
// Accepts JSON backup envelopes and restores points into storage
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	result, err := h.importer.ImportFromJSON(r.Context(), r.Body)
	if err != nil {
		log.Printf("❌ Import failed: %v", err)
		http.Error(w, fmt.Sprintf("Import failed: %v", err), http.StatusInternalServerError)
		return
	}

	if len(result.Errors) > 0 {
		log.Printf("⚠️  Import completed with %d validation errors", len(result.Errors))
		for i, msg := range result.Errors {
			if i >= 10 {
				log.Printf("   ... and %d more errors", len(result.Errors)-10)
				break
			}
			log.Printf("   - %s", msg)
		}
	}

	log.Printf("✅ Imported %d points from %s", result.PointsImported, result.TimeRange)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("❌ Failed to encode import response: %v", err)
	}
}
