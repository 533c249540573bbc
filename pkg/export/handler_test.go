package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pulseboard/pkg/storage"
	"pulseboard/pkg/storage/memory"
)

func TestHandleExport_InvalidFormat(t *testing.T) {
	handler := NewHandler(memory.New())

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=xml", nil)
	rr := httptest.NewRecorder()
	handler.HandleExport(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Invalid format")
}

func TestHandleExport_DefaultsToJSON(t *testing.T) {
	store := seedStore(t)
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rr := httptest.NewRecorder()
	handler.HandleExport(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "pulseboard-export-")
	require.Contains(t, rr.Header().Get("Content-Disposition"), ".json")

	var data ExportData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	require.Len(t, data.Points, 2)
}

func TestHandleExport_CSV(t *testing.T) {
	store := seedStore(t)
	handler := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=csv", nil)
	rr := httptest.NewRecorder()
	handler.HandleExport(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "id,ts,value,meta\n"))
}

func TestHandleExport_RangeBounds(t *testing.T) {
	store := seedStore(t)
	handler := NewHandler(store)

	// Bounds run through the shared normalizer; this range covers only
	// the first seeded point (2023-05-01T12:00:00Z = 1682942400)
	req := httptest.NewRequest(http.MethodGet, "/api/export?since=1682942400&until=1682942401", nil)
	rr := httptest.NewRecorder()
	handler.HandleExport(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data ExportData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &data))
	require.Len(t, data.Points, 1)
	require.Equal(t, 75.5, data.Points[0].Value)
}

func TestHandleImport_WrongContentType(t *testing.T) {
	handler := NewHandler(memory.New())

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleImport_RestoresPoints(t *testing.T) {
	store := memory.New()
	handler := NewHandler(store)

	envelope := `{
		"points": [
			{"id": 1, "ts": "2023-05-01T12:00:00+00:00", "value": 1.5, "meta": null}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(envelope))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleImport(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var result ImportResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	require.Equal(t, 1, result.PointsImported)

	points, err := store.Query(context.Background(), storage.QueryRequest{})
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, 1.5, points[0].Value)
}
