package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/labelmerge/internal/config"
	"github.com/JonMunkholm/labelmerge/internal/core"
	"github.com/JonMunkholm/labelmerge/internal/logging"
	"github.com/JonMunkholm/labelmerge/internal/session"
	"github.com/JonMunkholm/labelmerge/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"default_format", cfg.Output.DefaultFormat,
		"ingest_max_rows", cfg.Ingest.MaxRows,
		"ingest_max_concurrent", cfg.Ingest.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())
	slog.Info("label formats registered", "formats", core.FormatIDs())

	sessions := session.NewManager(cfg.Session.TTL, cfg.Output.DefaultFormat)
	if path := cfg.Session.StateFile; path != "" {
		n, err := sessions.LoadFile(path)
		if err != nil {
			// A bad snapshot costs users their wizard progress, not the service.
			slog.Warn("failed to restore sessions", "file", path, "error", err)
		} else {
			slog.Info("sessions restored", "file", path, "count", n)
		}
	}

	server := web.NewServer(cfg, sessions)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go sessions.StartSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if path := cfg.Session.StateFile; path != "" {
			n, err := sessions.SaveFile(path)
			if err != nil {
				slog.Error("failed to save sessions", "file", path, "error", err)
			} else {
				slog.Info("sessions saved", "file", path, "count", n)
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
