// Package cache provides Redis-backed caches.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
)

const invoiceKeyPrefix = "inventra:invoice:"

var _ invoice.Cache = (*InvoiceCache)(nil)

// NewClient connects to Redis using a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// InvoiceCache stores finalized invoices as JSON. Finalized invoices never
// change, so entries only expire.
type InvoiceCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewInvoiceCache creates an invoice cache.
func NewInvoiceCache(client redis.Cmdable, ttl time.Duration) *InvoiceCache {
	return &InvoiceCache{client: client, ttl: ttl}
}

func invoiceKey(publicID id.ID) string {
	return invoiceKeyPrefix + publicID.String()
}

// Get returns (nil, nil) on a miss.
func (c *InvoiceCache) Get(ctx context.Context, publicID id.ID) (*invoice.Invoice, error) {
	raw, err := c.client.Get(ctx, invoiceKey(publicID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry cachedInvoice
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached invoice: %w", err)
	}
	return entry.toInvoice(), nil
}

// Set stores a finalized invoice. Drafts are ignored.
func (c *InvoiceCache) Set(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil || !inv.IsFinal() {
		return nil
	}
	raw, err := json.Marshal(fromInvoice(inv))
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}
	if err := c.client.Set(ctx, invoiceKey(inv.PublicID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// cachedInvoice keeps the internal id, which the API representation hides.
type cachedInvoice struct {
	ID      int64            `json:"internal_id"`
	Invoice *invoice.Invoice `json:"invoice"`
}

func fromInvoice(inv *invoice.Invoice) cachedInvoice {
	return cachedInvoice{ID: inv.ID, Invoice: inv}
}

func (c cachedInvoice) toInvoice() *invoice.Invoice {
	if c.Invoice == nil {
		return nil
	}
	c.Invoice.ID = c.ID
	for i := range c.Invoice.Items {
		c.Invoice.Items[i].InvoiceID = c.ID
	}
	return c.Invoice
}
