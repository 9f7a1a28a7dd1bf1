package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/PraveenHasintha/inventra-backend/internal/config"
	"github.com/PraveenHasintha/inventra-backend/internal/core/numerator"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/checkout"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/cache"
	v1 "github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/metrics"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/auth_repo"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/catalog_repo"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/invoice_repo"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// devJWTSecret is only accepted when APP_ENV=development.
const devJWTSecret = "inventra-dev-secret"

type app struct {
	router *gin.Engine
	redis  *redis.Client
}

func newApp(ctx context.Context, cfg config.Config, pool *postgres.Pool, log *logger.Logger) (*app, error) {
	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.TxStatementTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// --- Repositories ---
	catalogs := catalog_repo.NewRepo(txm)
	stock := ledger_repo.NewStockRepo(txm)
	invoices := invoice_repo.NewRepo(txm)
	users := auth_repo.NewUserRepo(txm)

	// --- Invoice cache (optional) ---
	a := &app{}
	var invoiceCache invoice.Cache
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		invoiceCache = cache.NewInvoiceCache(client, cfg.InvoiceCacheTTL)
		log.Infow("invoice cache enabled", "ttl", cfg.InvoiceCacheTTL)
	}

	// --- Domain services ---
	mutator := ledger.NewMutator(stock, txm)
	ledgerSvc := ledger.NewService(stock, catalogs, mutator, txm, ledger.PageConfig{
		DefaultLimit: cfg.LedgerPageSize,
		MaxLimit:     cfg.LedgerMaxPageSize,
	}, m)
	sequencer := numerator.NewSequencer(numerator.Config{
		Prefix:   cfg.InvoicePrefix,
		PadWidth: cfg.InvoicePadWidth,
	})
	checkoutSvc := checkout.NewService(txm, catalogs, stock, mutator, invoices, sequencer, m)
	invoiceSvc := invoice.NewService(invoices, invoiceCache)

	// --- Auth ---
	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	jwtCfg := auth.DefaultJWTConfig(secret)
	jwtCfg.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtCfg)
	authService := auth.NewService(users, jwtService, auth.DefaultServiceConfig())

	routerCfg := v1.RouterConfig{
		Logger:           log,
		DB:               pool,
		JWTValidator:     jwtService,
		AuthService:      authService,
		Ledger:           ledgerSvc,
		Checkout:         checkoutSvc,
		Invoices:         invoiceSvc,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		CurrencyDecimals: int32(cfg.CurrencyDecimals),
		Version:          version,
		Debug:            cfg.IsDevelopment(),
	}
	if cfg.IdempotencyEnabled {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL)
	}

	a.router = v1.NewRouter(routerCfg)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
