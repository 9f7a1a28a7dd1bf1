// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL        string
	DBMaxConns         int
	DBMinConns         int
	DBAutoMigrate      bool
	TxStatementTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	InvoicePrefix    string
	InvoicePadWidth  int
	CurrencyDecimals int

	LedgerPageSize    int
	LedgerMaxPageSize int

	RedisURL        string
	InvoiceCacheTTL time.Duration

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	OTLPEndpoint string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 25),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 2),
		DBAutoMigrate:      getEnvBool("DB_AUTO_MIGRATE", true),
		TxStatementTimeout: getEnvDuration("TX_STATEMENT_TIMEOUT", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getEnvDuration("JWT_TTL", 12*time.Hour),

		InvoicePrefix:    getEnv("INVOICE_PREFIX", "INV"),
		InvoicePadWidth:  getEnvInt("INVOICE_PAD_WIDTH", 6),
		CurrencyDecimals: getEnvInt("CURRENCY_DECIMALS", 2),

		LedgerPageSize:    getEnvInt("LEDGER_PAGE_SIZE", 50),
		LedgerMaxPageSize: getEnvInt("LEDGER_MAX_PAGE_SIZE", 200),

		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		InvoiceCacheTTL: getEnvDuration("INVOICE_CACHE_TTL", 10*time.Minute),

		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTLPEndpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in a development environment.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.InvoicePadWidth < 1 || c.InvoicePadWidth > 18 {
		errs = append(errs, fmt.Errorf("INVOICE_PAD_WIDTH must be between 1 and 18, got %d", c.InvoicePadWidth))
	}
	if c.CurrencyDecimals < 0 || c.CurrencyDecimals > 6 {
		errs = append(errs, fmt.Errorf("CURRENCY_DECIMALS must be between 0 and 6, got %d", c.CurrencyDecimals))
	}
	if c.LedgerPageSize < 1 || c.LedgerMaxPageSize < c.LedgerPageSize {
		errs = append(errs, fmt.Errorf("LEDGER_PAGE_SIZE (%d) must be positive and not exceed LEDGER_MAX_PAGE_SIZE (%d)",
			c.LedgerPageSize, c.LedgerMaxPageSize))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
