/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the simulated-day ledger server: configuration,
  logger, metrics, ledger service, HTTP router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment
  2. Configure zerolog (level, format)
  3. Register prometheus instruments
  4. Wire the ledger service
  5. Start the HTTP server; shut down cleanly on SIGINT/SIGTERM

ENVIRONMENT:
  HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT,
  HTTP_SHUTDOWN_TIMEOUT, CORS_ORIGINS, LOG_LEVEL, LOG_FORMAT

SEE ALSO:
  - api/server.go: router configuration
  - config/config.go: environment schema
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/warp/simledger/api"
	"github.com/warp/simledger/config"
	"github.com/warp/simledger/ledger"
	"github.com/warp/simledger/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Wire the ledger
	m := metrics.New(prometheus.DefaultRegisterer)
	svc := ledger.NewService(log.Logger, m)

	// Create router and server
	router := api.NewRouter(api.NewHandler(svc), cfg.CORSOrigins)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
