package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"pulseboard/pkg/config"
	"pulseboard/pkg/export"
	"pulseboard/pkg/ingest"
	"pulseboard/pkg/point"
	"pulseboard/pkg/query"
	"pulseboard/pkg/storage/memory"
)

// newTestServer stands up the full route table over an in-memory store.
func newTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()

	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ingest.NewHub()
	go hub.Run(ctx)

	cfg := &config.Config{
		Port:        "8080",
		APIKey:      apiKey,
		DatabaseURL: "memory://",
	}

	router := mux.NewRouter()
	SetupRoutes(router, cfg, store,
		ingest.NewHandler(store, hub),
		query.NewHandler(store),
		export.NewHandler(store),
		hub,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestServer_IngestThenQuery(t *testing.T) {
	srv := newTestServer(t, "")
	start := time.Now()

	resp, body := postJSON(t, srv, "/api/ingest", `{"value": 12.3}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","id":1}`, body)

	resp, body = get(t, srv, "/api/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points []struct {
		ID    int64   `json:"id"`
		Ts    string  `json:"ts"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &points))
	require.Len(t, points, 1)
	require.Equal(t, int64(1), points[0].ID)
	require.Equal(t, 12.3, points[0].Value)

	// Absent metadata is an explicit null on the wire
	require.Contains(t, body, `"meta":null`)

	ts, err := time.Parse(point.TimeLayout, points[0].Ts)
	require.NoError(t, err)
	require.WithinDuration(t, start, ts, time.Second)
}

func TestServer_RejectedIngestLeavesStoreUnchanged(t *testing.T) {
	srv := newTestServer(t, "")

	resp, body := postJSON(t, srv, "/api/ingest", `{"value": "abc"}`, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"error":"'value' must be a number"}`, body)

	resp, body = get(t, srv, "/api/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "[]", body)
}

func TestServer_APIKeyGuardsWrites(t *testing.T) {
	srv := newTestServer(t, "secret")

	resp, body := postJSON(t, srv, "/api/ingest", `{"value": 1}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"error":"Unauthorized"}`, body)

	resp, _ = postJSON(t, srv, "/api/ingest", `{"value": 1}`, map[string]string{"X-API-Key": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = postJSON(t, srv, "/api/ingest", `{"value": 1}`, map[string]string{"X-API-Key": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","id":1}`, body)

	// Reads stay open even when a key is configured
	resp, _ = get(t, srv, "/api/data")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Import is a write and is gated the same way
	resp, _ = postJSON(t, srv, "/api/import", `{"metadata":{},"points":[]}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, srv, "/api/import", `{"metadata":{},"points":[]}`, map[string]string{"X-API-Key": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "")

	resp, _ := get(t, srv, "/api/ingest")
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = postJSON(t, srv, "/api/data", `{}`, nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "")

	resp, body := get(t, srv, "/api/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, Version, health.Version)
	require.NotEmpty(t, health.Uptime)
}

func TestServer_Stats(t *testing.T) {
	srv := newTestServer(t, "")

	// Empty store reports zero points and omits the time bounds
	resp, body := get(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"total_points":0`)
	require.NotContains(t, body, "oldest_point")

	resp, _ = postJSON(t, srv, "/api/ingest", `{"value": 5, "ts": 1682942400}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = get(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	require.Equal(t, uint64(1), stats.TotalPoints)
	require.NotNil(t, stats.OldestPoint)
	require.True(t, stats.OldestPoint.Equal(time.Unix(1682942400, 0)))
	require.NotNil(t, stats.NewestPoint)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, "")
	postJSON(t, srv, "/api/ingest", `{"value": 1}`, nil)

	resp, body := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "pulseboard_http_requests_total")
	require.Contains(t, body, "pulseboard_points_ingested_total")
}

func TestServer_DashboardServed(t *testing.T) {
	srv := newTestServer(t, "")

	resp, body := get(t, srv, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, body, "Pulseboard")

	resp, _ = get(t, srv, "/static/index.html")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CORSForLocalOrigins(t *testing.T) {
	srv := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/data", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	// Unknown origins get no CORS headers at all
	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/data", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example.com")
	resp, err = srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
