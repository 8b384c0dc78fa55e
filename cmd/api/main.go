package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-forecast/config"
	"payment-forecast/internal/adapter/feed"
	httpHandler "payment-forecast/internal/adapter/http/handler"
	"payment-forecast/internal/service"
	"payment-forecast/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("feed", cfg.Feed.Path).
		Msg("Starting Payment Forecast")

	// Per-record rejections go to their own log, mirroring the feed's
	// parse-error file; fall back to stderr when unset.
	var diagWriter io.Writer = os.Stderr
	if cfg.Feed.ErrorLog != "" {
		errorLog, err := os.Create(cfg.Feed.ErrorLog)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Feed.ErrorLog).Msg("Failed to open parse-error log")
		}
		defer errorLog.Close()
		diagWriter = errorLog
	}
	diagLog := logger.NewWithWriter(cfg.Log.Level, diagWriter)

	// Open the feed. This is the one non-recoverable resource failure:
	// rejected records are logged and skipped, a missing feed halts the run.
	source, err := feed.OpenFileSource(cfg.Feed.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open payment feed")
	}

	ingest := service.NewIngestService(
		service.NewSHA256DigestService(),
		service.NewLogDiagnosticSink(diagLog),
		log,
	)

	report, err := ingest.Run(source)
	source.Close() //nolint:errcheck
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion run failed")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Forecast:  ingest,
		Merchants: ingest,
		Report:    report,
		Logger:    log,
	})

	// HTTP Server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
