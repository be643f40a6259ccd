// Package stream delivers animation frames to browsers over Server-Sent
// Events. Clients connect via GET /api/v1/stream/frames and receive the
// whole animation as a paced sequence of accumulated frames. Every frame
// message carries the complete visible picture, so a renderer replaces
// its scene on each message rather than appending to it.
//
// Message order on every connection:
//
//	data: {"type":"metadata","source":"flights.json","flight_count":6,...}\n\n
//	data: {"type":"frame","frame_number":0,"frame_name":"frame_0",...}\n\n
//	...
//	data: {"type":"done","frames_sent":200,"total_frames":200}\n\n
//
// After done the stream idles with keepalive comments (:\n\n) until the
// client leaves. With loop=1 the playback restarts at frame 0 instead of
// finishing. Each connection replays from the start against the scene it
// joined with; a reload never disturbs running streams.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/export"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/httputil"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // max concurrent streams per IP (default 10)
	KeepaliveInterval  time.Duration // keepalive comment interval when idle (default 15s)
	DefaultFPS         int           // playback rate when the client names none (default 25)
	TrustProxy         bool          // trust forwarded headers for the per-IP limit
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentPerIP < 1 {
		c.MaxConcurrentPerIP = 10
	}
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = 15 * time.Second
	}
	if c.DefaultFPS < 1 || c.DefaultFPS > 60 {
		c.DefaultFPS = 25
	}
	return c
}

// SceneSource yields the scene new connections play. The server swaps
// scenes on reload; a connection keeps the one it started with.
type SceneSource interface {
	Scene() *anim.Scene
}

// Handler manages SSE streaming connections.
type Handler struct {
	scenes  SceneSource
	config  Config
	limiter *streamLimiter
	logger  *slog.Logger
}

// NewHandler creates a streaming handler.
func NewHandler(scenes SceneSource, config Config, logger *slog.Logger) *Handler {
	config = config.withDefaults()
	return &Handler{
		scenes:  scenes,
		config:  config,
		limiter: newStreamLimiter(config.MaxConcurrentPerIP),
		logger:  logger,
	}
}

// HandleFrames serves the SSE frame stream.
// GET /api/v1/stream/frames?fps=25&loop=0
func (h *Handler) HandleFrames(w http.ResponseWriter, r *http.Request) {
	fps := h.config.DefaultFPS
	if v := r.URL.Query().Get("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid fps parameter, must be 1-60"})
			return
		}
		fps = n
	}

	loop := false
	if v := r.URL.Query().Get("loop"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid loop parameter, must be boolean"})
			return
		}
		loop = b
	}

	scene := h.scenes.Scene()
	if scene == nil {
		metrics.IncStreamErrors("no_scene")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "no flight data loaded"})
		return
	}

	// Concurrency limiting before any streaming starts.
	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.limiter.release(ip)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	metrics.IncStreamClients()
	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"fps", fps,
		"loop", loop,
		"total_frames", scene.Frames.Total(),
	)

	framesSent := 0
	defer func() {
		h.limiter.release(ip)
		metrics.DecStreamClients()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"frames_sent", framesSent,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Long-lived connection: clear the server write timeout, then bound
	// each individual write instead.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) spreads reconnects after a restart.
	fmt.Fprintf(w, "retry: %d\n\n", 3000+rand.Intn(4000))
	flusher.Flush()

	meta := metadataMessage{
		Type:        "metadata",
		Source:      scene.Set.Source,
		FetchedAt:   scene.Set.FetchedAt.UTC().Format(time.RFC3339),
		FlightCount: len(scene.Set.Records),
		TotalFrames: scene.Frames.Total(),
		FPS:         fps,
		Loop:        loop,
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "remote_ip", ip, "error", err)
		return
	}

	ctx := r.Context()
	pacer := rate.NewLimiter(rate.Limit(fps), 1)

	for k := 0; ; k++ {
		if err := pacer.Wait(ctx); err != nil {
			return
		}

		frame, ok := scene.Frames.Get(k)
		if !ok {
			if loop {
				k = -1
				continue
			}
			break
		}

		msg := frameMessage{Type: "frame", Record: export.FromFrame(k, frame)}
		if err := c.sendJSON(msg); err != nil {
			metrics.IncStreamErrors("send_error")
			h.logger.Warn("stream send error", "remote_ip", ip, "frame", k, "error", err)
			return
		}
		metrics.IncStreamFramesSent()
		framesSent++
	}

	done := doneMessage{
		Type:        "done",
		FramesSent:  framesSent,
		TotalFrames: scene.Frames.Total(),
	}
	if err := c.sendJSON(done); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (done)", "remote_ip", ip, "error", err)
		return
	}

	// Hold the connection open for clients that want to linger on the
	// finished globe.
	keepalive := time.NewTicker(h.config.KeepaliveInterval)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// SSE message payload types.

type metadataMessage struct {
	Type        string `json:"type"`
	Source      string `json:"source"`
	FetchedAt   string `json:"fetched_at"`
	FlightCount int    `json:"flight_count"`
	TotalFrames int    `json:"total_frames"`
	FPS         int    `json:"fps"`
	Loop        bool   `json:"loop"`
}

type frameMessage struct {
	Type string `json:"type"`
	export.Record
}

type doneMessage struct {
	Type        string `json:"type"`
	FramesSent  int    `json:"frames_sent"`
	TotalFrames int    `json:"total_frames"`
}
