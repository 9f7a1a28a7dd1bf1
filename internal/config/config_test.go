package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/inventra")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "INV", cfg.InvoicePrefix)
	assert.Equal(t, 6, cfg.InvoicePadWidth)
	assert.Equal(t, 50, cfg.LedgerPageSize)
	assert.Equal(t, 200, cfg.LedgerMaxPageSize)
	assert.Equal(t, 30*time.Second, cfg.TxStatementTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/inventra")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INVOICE_PREFIX", "BR1")
	t.Setenv("INVOICE_PAD_WIDTH", "8")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("TX_STATEMENT_TIMEOUT", "5s")
	t.Setenv("LEDGER_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "BR1", cfg.InvoicePrefix)
	assert.Equal(t, 8, cfg.InvoicePadWidth)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.TxStatementTimeout)
	assert.Equal(t, 50, cfg.LedgerPageSize)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Config{
		AppEnv:            "production",
		InvoicePadWidth:   0,
		LedgerPageSize:    300,
		LedgerMaxPageSize: 200,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), "INVOICE_PAD_WIDTH")
	assert.Contains(t, err.Error(), "LEDGER_PAGE_SIZE")
}
