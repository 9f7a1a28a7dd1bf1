// Package main is the entry point for the Inventra API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/PraveenHasintha/inventra-backend/internal/config"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
	"github.com/PraveenHasintha/inventra-backend/pkg/telemetry"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting inventra server", "version", version, "env", cfg.AppEnv)

	// --- Telemetry ---
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "inventra-api",
		Version:     version,
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	poolCfg.ApplicationName = "inventra-api"

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	log.Info("database connection established")

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(pool); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Info("migrations applied")
	}

	app, err := newApp(ctx, cfg, pool, log)
	if err != nil {
		log.Fatalw("failed to wire application", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gzhttp.GzipHandler(app.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	app.close()
	pool.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warnw("tracer shutdown failed", "error", err)
	}

	log.Info("server stopped")
	_ = log.Sync()
}
