// Package main is the entry point for the Inventra background worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/config"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting inventra worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.ApplicationName = "inventra-worker"

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool, postgres.DefaultTxOptions())
	worker := NewWorker(pool, postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL), log, DefaultSchedule())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Schedule sets how often each job runs.
type Schedule struct {
	Cleanup   time.Duration
	PoolStats time.Duration
}

// DefaultSchedule returns production intervals.
func DefaultSchedule() Schedule {
	return Schedule{
		Cleanup:   time.Hour,
		PoolStats: time.Minute,
	}
}

// KeyCleaner deletes expired idempotency records.
type KeyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StatsLogger logs connection pool statistics.
type StatsLogger interface {
	LogStats(ctx context.Context)
}

// Worker runs periodic maintenance jobs.
type Worker struct {
	stats    StatsLogger
	keys     KeyCleaner
	log      *logger.Logger
	schedule Schedule
}

func NewWorker(stats StatsLogger, keys KeyCleaner, log *logger.Logger, schedule Schedule) *Worker {
	return &Worker{
		stats:    stats,
		keys:     keys,
		log:      log.WithComponent("worker"),
		schedule: schedule,
	}
}

// Run blocks until ctx is cancelled. Cleanup also runs once at start.
func (w *Worker) Run(ctx context.Context) {
	cleanupTicker := time.NewTicker(w.schedule.Cleanup)
	defer cleanupTicker.Stop()

	statsTicker := time.NewTicker(w.schedule.PoolStats)
	defer statsTicker.Stop()

	w.cleanupIdempotency(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		case <-statsTicker.C:
			w.stats.LogStats(logger.WithLogger(ctx, w.log))
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	count, err := w.keys.CleanupExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Errorw("idempotency cleanup failed", "error", err)
		}
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", count)
	}
}
