// Package metrics exposes Prometheus instrumentation for the HTTP API.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseboard_http_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "code"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulseboard_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PointsIngested counts points accepted into the store.
	PointsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulseboard_points_ingested_total",
		Help: "Total number of points accepted into the store",
	})

	// IngestRejected counts ingest requests rejected during validation.
	IngestRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulseboard_ingest_rejected_total",
		Help: "Total number of ingest requests rejected during validation",
	})

	// StoragePoints reports the number of points currently in the store.
	StoragePoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulseboard_storage_points",
		Help: "Number of points currently in the store",
	})

	// StorageSizeBytes reports the store's size where the backend can
	// measure it.
	StorageSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulseboard_storage_size_bytes",
		Help: "Approximate size of the store in bytes",
	})
)

// Handler returns the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments handlers with request count and latency metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		requestDuration.Observe(time.Since(start).Seconds())
		requestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
	})
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack forwards to the underlying writer so websocket upgrades still work
// behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}
