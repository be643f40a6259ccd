// Package api assembles the HTTP surface: REST endpoints over the current
// scene, the SSE frame stream, probes, metrics, the admin reload, and the
// embedded web client.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/auth"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/health"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/httputil"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/stream"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/web"
)

// Config holds the server configuration.
type Config struct {
	Addr         string
	AuthToken    string  // empty disables the admin endpoints
	TotalFrames  int     // frame budget for the whole animation
	Steps        int     // interpolation steps per path
	Radius       float64 // sphere radius tracks are projected onto
	RevealFrames int     // per-path reveal override; 0 derives from TotalFrames
	Workers      int     // track build concurrency
	TrustProxy   bool    // trust forwarded headers for client addresses
	Stream       stream.Config
}

// Server holds the HTTP server, the flight store, and the current scene.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     *slog.Logger
	fetcher    *flights.Fetcher
	store      *flights.Store
	scene      atomic.Pointer[anim.Scene]
}

// NewServer creates a configured HTTP server. The scene starts empty;
// call Reload to load flight data before serving traffic.
func NewServer(cfg Config, fetcher *flights.Fetcher, logger *slog.Logger) *Server {
	cfg.Stream.TrustProxy = cfg.TrustProxy
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		fetcher: fetcher,
		store:   flights.NewStore(),
	}

	streamHandler := stream.NewHandler(s, cfg.Stream, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /readyz", health.Readyz(s.ready))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/flights", s.handleFlights)
	mux.HandleFunc("GET /api/v1/tracks", s.handleTracks)
	mux.HandleFunc("GET /api/v1/tracks/{id}", s.handleTrackByID)
	mux.HandleFunc("GET /api/v1/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/v1/frames/{index}", s.handleFrame)
	mux.HandleFunc("GET /api/v1/stream/frames", streamHandler.HandleFrames)
	mux.HandleFunc("POST /api/v1/admin/reload", s.handleReload)
	mux.Handle("GET /", http.FileServerFS(web.Content))

	// Middleware chain: metrics -> logging -> auth -> recovery -> mux.
	var handler http.Handler = mux
	handler = recoverMiddleware(logger)(handler)
	handler = auth.Middleware(auth.Config{Token: cfg.AuthToken})(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Scene returns the currently served scene, nil before the first load.
// New stream connections pick it up here.
func (s *Server) Scene() *anim.Scene {
	return s.scene.Load()
}

// Store returns the flight set store.
func (s *Server) Store() *flights.Store {
	return s.store
}

func (s *Server) ready() bool {
	return s.scene.Load() != nil
}

// HTTPServer returns the underlying *http.Server for external control
// (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not
// log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE streaming works behind the wrapper.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}

func recoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", fmt.Sprint(rec),
						"stack", string(debug.Stack()),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
