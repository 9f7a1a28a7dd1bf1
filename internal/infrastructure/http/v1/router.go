// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/checkout"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/handlers"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/middleware"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/metrics"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// RouterConfig holds the services and infrastructure the API is built on.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	AuthService *auth.Service
	Ledger      *ledger.Service
	Checkout    *checkout.Service
	Invoices    *invoice.Service

	// Idempotency stores X-Idempotency-Key outcomes. Nil disables the middleware.
	Idempotency middleware.IdempotencyStore

	// Metrics and MetricsHandler are optional; /metrics is served when the handler is set.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	// CurrencyDecimals is the fractional digit count for rendered amounts
	CurrencyDecimals int32

	Version string
	Debug   bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!). Recovery sits inside ErrorHandler
	// so a recovered panic is still rendered, logged and counted.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		if cfg.AuthService != nil {
			authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
			v1.POST("/auth/login", authHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Runs after Auth so stored keys are scoped to the caller.
		if cfg.Idempotency != nil {
			protected.Use(middleware.Idempotency(cfg.Idempotency, cfg.Metrics))
		}

		registerStockRoutes(protected, base, cfg)
		registerCheckoutRoutes(protected, base, cfg)
	}

	return router
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockHandler(base, cfg.Ledger)

	stock := rg.Group("/stock")
	stock.POST("/receive", middleware.RequirePermission(auth.PermStockWrite), h.Receive)
	stock.POST("/adjust", middleware.RequirePermission(auth.PermStockWrite), h.Adjust)
	stock.POST("/reduce", middleware.RequirePermission(auth.PermStockWrite), h.Reduce)
	stock.GET("/items", middleware.RequirePermission(auth.PermStockRead), h.GetItem)
	stock.GET("/ledger", middleware.RequirePermission(auth.PermStockRead), h.ListLedger)
}

func registerCheckoutRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	co := handlers.NewCheckoutHandler(base, cfg.Checkout, cfg.Invoices, cfg.CurrencyDecimals)
	rg.POST("/checkout", middleware.RequirePermission(auth.PermCheckoutCreate), co.Checkout)

	inv := handlers.NewInvoiceHandler(base, cfg.Invoices, cfg.CurrencyDecimals)
	rg.GET("/invoices/:publicId", middleware.RequirePermission(auth.PermInvoiceRead), inv.Get)
}
