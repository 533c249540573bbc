package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pulseboard/pkg/config"
	"pulseboard/pkg/export"
	"pulseboard/pkg/httpx"
	"pulseboard/pkg/ingest"
	"pulseboard/pkg/metrics"
	"pulseboard/pkg/query"
	"pulseboard/pkg/storage"
	"pulseboard/pkg/web"
)

// Version is reported by the health endpoint and the version command.
const Version = "1.0.0"

var startTime = time.Now()

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// StatsResponse mirrors storage.Stats on the wire. The oldest and newest
// timestamps are omitted entirely while the store is empty.
type StatsResponse struct {
	TotalPoints uint64     `json:"total_points"`
	OldestPoint *time.Time `json:"oldest_point,omitempty"`
	NewestPoint *time.Time `json:"newest_point,omitempty"`
	SizeBytes   uint64     `json:"size_bytes"`
}

// handleHealth returns service health status.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(startTime).String(),
	})
}

// handleStats returns store statistics.
func handleStats(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			log.Printf("Stats failed: %v", err)
			httpx.RespondError(w, http.StatusInternalServerError, "failed to read store statistics")
			return
		}

		resp := StatsResponse{
			TotalPoints: stats.TotalPoints,
			SizeBytes:   stats.SizeBytes,
		}
		if !stats.OldestPoint.IsZero() {
			oldest := stats.OldestPoint
			resp.OldestPoint = &oldest
		}
		if !stats.NewestPoint.IsZero() {
			newest := stats.NewestPoint
			resp.NewestPoint = &newest
		}

		httpx.RespondJSON(w, http.StatusOK, resp)
	}
}

// SetupRoutes configures all HTTP routes for the server.
func SetupRoutes(
	router *mux.Router,
	cfg *config.Config,
	store storage.Store,
	ingestHandler *ingest.Handler,
	queryHandler *query.Handler,
	exportHandler *export.Handler,
	hub *ingest.Hub,
) {
	// CORS middleware for API access
	router.Use(corsMiddleware(cfg.Port))
	router.Use(metrics.Middleware)

	// API routes
	api := router.PathPrefix("/api").Subrouter()

	// Writes require the API key when one is configured
	api.Handle("/ingest", requireAPIKey(cfg.APIKey, http.HandlerFunc(ingestHandler.HandleIngest))).Methods("POST")
	api.Handle("/import", requireAPIKey(cfg.APIKey, http.HandlerFunc(exportHandler.HandleImport))).Methods("POST")

	// Reads stay open
	api.HandleFunc("/data", queryHandler.HandleData).Methods("GET")
	api.HandleFunc("/export", exportHandler.HandleExport).Methods("GET")
	api.HandleFunc("/stats", handleStats(store)).Methods("GET")
	api.HandleFunc("/health", handleHealth).Methods("GET")

	// WebSocket for live point streaming
	api.HandleFunc("/live", ingestHandler.HandleWebSocket(hub)).Methods("GET")

	// Prometheus exposition
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Embedded dashboard
	router.PathPrefix("/static/").Handler(web.StaticHandler())
	router.HandleFunc("/", web.HandleIndex).Methods("GET")
}
