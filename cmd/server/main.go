// Package main is the entry point for the Mars Command robot service.
// It tracks robots on a bounded rectangular grid of Mars, applies movement
// commands to them and keeps an audit trail of every command.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/mars-command/internal/config"
	"github.com/aristath/mars-command/internal/di"
	"github.com/aristath/mars-command/internal/server"
	"github.com/aristath/mars-command/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from .env and environment variables
// 2. Initializes logging
// 3. Wires databases, repositories, services and jobs
// 4. Starts the HTTP server and the job scheduler
// 5. Waits for a shutdown signal and shuts down gracefully
//
// Two databases live under the data directory:
// - state.db: current robot positions
// - history.db: append-only command log
func main() {
	cfg, err := config.Load()
	if err != nil {
		// The configured level is unknown until config loads
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("data_dir", cfg.DataDir).
		Bool("remote_backups", cfg.RemoteBackupEnabled()).
		Msg("Starting Mars Command")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()
	for _, job := range container.Scheduler.Jobs() {
		log.Info().
			Str("job", job.Name).
			Str("schedule", job.Schedule).
			Msg("Job scheduled")
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop waits for running jobs so no backup is cut off mid-archive
	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
