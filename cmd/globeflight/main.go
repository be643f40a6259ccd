package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/api"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: loadLogLevel(),
	}))

	cfg := loadServerConfig(logger)
	cfg.Stream = loadStreamConfig(logger)

	source := os.Getenv("GLOBE_FLIGHTS_SOURCE")
	if source == "" {
		source = "flights.json"
	}

	var cache *flights.Cache
	if dir := os.Getenv("GLOBE_CACHE_DIR"); dir != "" {
		cache = flights.NewCache(dir, 5)
	}

	fetcher := flights.NewFetcher(source, cache, logger)
	srv := api.NewServer(cfg, fetcher, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial load. A failure is not fatal: the server starts unready and a
	// later admin reload can retry once the source recovers.
	loadCtx, loadCancel := context.WithTimeout(ctx, 60*time.Second)
	if _, err := srv.Reload(loadCtx); err != nil {
		logger.Warn("initial flight load failed, serving unready", "source", source, "error", err)
	}
	loadCancel()

	// Background goroutine to update the flight set age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := srv.Store().AgeSeconds()
				if age >= 0 {
					metrics.SetFlightSetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "source", source, "auth_enabled", cfg.AuthToken != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadLogLevel() slog.Level {
	switch os.Getenv("GLOBE_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadServerConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{
		Addr:        ":8080",
		AuthToken:   os.Getenv("GLOBE_ADMIN_TOKEN"),
		TotalFrames: 200,
		Steps:       50,
		Radius:      1.0,
		Workers:     runtime.NumCPU(),
	}

	if v := os.Getenv("GLOBE_LISTEN_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("GLOBE_TOTAL_FRAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GLOBE_TOTAL_FRAMES value, using default", "value", v, "default", cfg.TotalFrames)
		} else {
			cfg.TotalFrames = n
		}
	}

	if v := os.Getenv("GLOBE_POINTS_PER_FLIGHT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 {
			logger.Warn("invalid GLOBE_POINTS_PER_FLIGHT value, using default", "value", v, "default", cfg.Steps)
		} else {
			cfg.Steps = n
		}
	}

	if v := os.Getenv("GLOBE_SPHERE_RADIUS"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			logger.Warn("invalid GLOBE_SPHERE_RADIUS value, using default", "value", v, "default", cfg.Radius)
		} else {
			cfg.Radius = r
		}
	}

	if v := os.Getenv("GLOBE_REVEAL_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GLOBE_REVEAL_RATE value, deriving from total frames", "value", v)
		} else {
			cfg.RevealFrames = n
		}
	}

	if v := os.Getenv("GLOBE_BUILD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GLOBE_BUILD_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("GLOBE_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid GLOBE_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = b
		}
	}

	logger.Info("animation config",
		"total_frames", cfg.TotalFrames,
		"points_per_flight", cfg.Steps,
		"sphere_radius", cfg.Radius,
		"reveal_rate", cfg.RevealFrames,
		"build_workers", cfg.Workers,
	)

	return cfg
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  15 * time.Second,
		DefaultFPS:         25,
	}

	if v := os.Getenv("GLOBE_STREAM_MAX_PER_IP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GLOBE_STREAM_MAX_PER_IP value, using default", "value", v, "default", 10)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("GLOBE_STREAM_KEEPALIVE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid GLOBE_STREAM_KEEPALIVE_INTERVAL value, using default", "value", v, "default", 15)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("GLOBE_FPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			logger.Warn("invalid GLOBE_FPS value, using default", "value", v, "default", 25)
		} else {
			cfg.DefaultFPS = n
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
		"default_fps", cfg.DefaultFPS,
	)

	return cfg
}
