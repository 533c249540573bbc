// Package query serves read access to stored points.
package query

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cespare/xxhash/v2"

	"pulseboard/pkg/httpx"
	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
	"pulseboard/pkg/timeparse"
)

// Handler handles point range queries.
type Handler struct {
	store storage.Store
}

// NewHandler creates a new query handler.
func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// BoundsFromRequest resolves optional since/until query parameters into a
// range request. Empty parameters leave that side of the range open; any
// non-empty parameter goes through the shared normalizer, so an unparseable
// bound becomes "now" instead of an error.
func BoundsFromRequest(r *http.Request) storage.QueryRequest {
	var req storage.QueryRequest
	if raw := r.URL.Query().Get("since"); raw != "" {
		t := timeparse.Normalize(raw)
		req.Since = &t
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		t := timeparse.Normalize(raw)
		req.Until = &t
	}
	return req
}

// HandleData handles the GET /api/data endpoint. Responses carry a strong
// ETag over the encoded body so polling dashboards can cheaply skip
// unchanged data via If-None-Match.
func (h *Handler) HandleData(w http.ResponseWriter, r *http.Request) {
	points, err := h.store.Query(r.Context(), BoundsFromRequest(r))
	if err != nil {
		log.Printf("Query failed: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to query points")
		return
	}
	if points == nil {
		points = []point.Point{} // encode as [] rather than null
	}

	body, err := json.Marshal(points)
	if err != nil {
		log.Printf("Encode failed: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to encode points")
		return
	}

	etag := fmt.Sprintf("\"%x\"", xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
