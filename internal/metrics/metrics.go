// Package metrics holds the Prometheus collectors for the animation server
// and the HTTP middleware that feeds the request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globeflight_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"route", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "globeflight_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	trackBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globeflight_track_builds_total",
			Help: "Path tracks built, by outcome.",
		},
		[]string{"status"},
	)

	trackBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globeflight_track_build_duration_seconds",
			Help:    "Duration of whole-batch track builds in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	advanceTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "globeflight_advance_ticks_total",
			Help: "Animation state advances across all playbacks.",
		},
	)

	framesComputedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "globeflight_frames_computed_total",
			Help: "Frame snapshots computed across all playbacks.",
		},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "globeflight_active_streams",
			Help: "Currently connected frame stream clients.",
		},
	)

	streamFramesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "globeflight_stream_frames_sent_total",
			Help: "Frames written to stream clients.",
		},
	)

	streamBytesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "globeflight_stream_bytes_sent_total",
			Help: "Bytes written to stream clients, keepalives included.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globeflight_stream_errors_total",
			Help: "Stream failures, by reason.",
		},
		[]string{"reason"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globeflight_exports_total",
			Help: "Frame dump exports, by outcome.",
		},
		[]string{"status"},
	)

	exportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globeflight_export_duration_seconds",
			Help:    "Duration of full-animation exports in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	flightsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "globeflight_flights_loaded",
			Help: "Flights in the currently loaded set.",
		},
	)

	flightSetAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "globeflight_flight_set_age_seconds",
			Help: "Age of the currently loaded flight set in seconds.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		trackBuildsTotal,
		trackBuildDuration,
		advanceTicksTotal,
		framesComputedTotal,
		activeStreams,
		streamFramesSentTotal,
		streamBytesSentTotal,
		streamErrorsTotal,
		exportsTotal,
		exportDuration,
		flightsLoaded,
		flightSetAgeSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTrackBuild records a batch build: its wall time and per-track outcomes.
func RecordTrackBuild(d time.Duration, built, failed int) {
	trackBuildDuration.Observe(d.Seconds())
	trackBuildsTotal.WithLabelValues("built").Add(float64(built))
	trackBuildsTotal.WithLabelValues("failed").Add(float64(failed))
}

// IncAdvanceTicks counts one animation state advance.
func IncAdvanceTicks() {
	advanceTicksTotal.Inc()
}

// IncFramesComputed counts one frame snapshot computation.
func IncFramesComputed() {
	framesComputedTotal.Inc()
}

// IncStreamClients tracks a stream client connecting.
func IncStreamClients() {
	activeStreams.Inc()
}

// DecStreamClients tracks a stream client leaving.
func DecStreamClients() {
	activeStreams.Dec()
}

// IncStreamFramesSent counts one frame written to a stream client.
func IncStreamFramesSent() {
	streamFramesSentTotal.Inc()
}

// AddStreamBytes counts bytes written to a stream client.
func AddStreamBytes(n int64) {
	streamBytesSentTotal.Add(float64(n))
}

// IncStreamErrors counts a stream failure. Known reasons: rate_limit,
// send_error, no_scene.
func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordExport records a full-animation export and its outcome.
func RecordExport(d time.Duration, err error) {
	exportDuration.Observe(d.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	exportsTotal.WithLabelValues(status).Inc()
}

// SetFlightsLoaded publishes the size of the currently loaded flight set.
func SetFlightsLoaded(n int) {
	flightsLoaded.Set(float64(n))
}

// SetFlightSetAge publishes the age of the loaded flight set.
func SetFlightSetAge(seconds float64) {
	flightSetAgeSeconds.Set(seconds)
}

// exactRoutes are the fixed paths the server exposes. Anything else is
// either a parameterized route or bot noise.
var exactRoutes = map[string]bool{
	"/":                     true,
	"/healthz":              true,
	"/readyz":               true,
	"/metrics":              true,
	"/api/v1/flights":       true,
	"/api/v1/tracks":        true,
	"/api/v1/timeline":      true,
	"/api/v1/stream/frames": true,
	"/api/v1/admin/reload":  true,
}

// normalizeRoute collapses request paths to a bounded label set so scanner
// traffic and per-ID routes cannot blow up metric cardinality.
func normalizeRoute(path string) string {
	if exactRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/tracks/") {
		return "/api/v1/tracks/{id}"
	}
	if strings.HasPrefix(path, "/api/v1/frames/") {
		return "/api/v1/frames/{index}"
	}
	if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".css") || strings.HasSuffix(path, ".ico") {
		return "static"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE streaming works behind the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		route := normalizeRoute(r.URL.Path)
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
