package ingest

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pulseboard/pkg/httpx"
	"pulseboard/pkg/metrics"
	"pulseboard/pkg/point"
	"pulseboard/pkg/storage"
	"pulseboard/pkg/timeparse"
)

// Validation errors. Messages are part of the API contract and reach
// clients verbatim.
var (
	ErrValueMissing   = errors.New("Missing 'value'")
	ErrValueNotNumber = errors.New("'value' must be a number")
)

// Handler accepts data points over HTTP and fans them out to live listeners.
type Handler struct {
	store storage.Store
	hub   *Hub
}

// NewHandler creates a new ingest handler. hub may be nil when live
// streaming is not wired up.
func NewHandler(store storage.Store, hub *Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

// IngestRequest represents the request payload. Value and Ts stay raw so
// validation can tell numbers, strings, null and absent fields apart.
type IngestRequest struct {
	Value json.RawMessage `json:"value"`
	Ts    json.RawMessage `json:"ts"`
	Meta  json.RawMessage `json:"meta"`
}

// IngestResponse represents the response payload on success.
type IngestResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// HandleIngest handles the POST /api/ingest endpoint.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.IngestRejected.Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httpx.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	value, err := parseValue(req.Value)
	if err != nil {
		metrics.IngestRejected.Inc()
		httpx.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ts := parseTs(req.Ts)
	meta := point.NormalizeMeta(req.Meta)

	id, err := h.store.Insert(r.Context(), ts, value, meta)
	if err != nil {
		log.Printf("Insert failed: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "failed to store point")
		return
	}

	metrics.PointsIngested.Inc()

	if h.hub != nil {
		h.hub.BroadcastPoint(point.Point{ID: id, Timestamp: ts, Value: value, Meta: meta})
	}

	httpx.RespondJSON(w, http.StatusOK, IngestResponse{Status: "ok", ID: id})
}

// parseValue extracts a finite float from a JSON number or numeric string.
// An absent field and an explicit null are distinct failures: the original
// API reports "Missing 'value'" only when the key is not in the payload.
func parseValue(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, ErrValueMissing
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, ErrValueNotNumber
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, ErrValueNotNumber
		}
		f = parsed
	default: // null, bool, object, array
		return 0, ErrValueNotNumber
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrValueNotNumber
	}
	return f, nil
}

// parseTs resolves the optional ts field through the shared normalizer.
// It never fails; unusable input degrades to the current time.
func parseTs(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return timeparse.Normalize(nil)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return timeparse.Normalize(nil)
	}
	return timeparse.Normalize(v)
}
