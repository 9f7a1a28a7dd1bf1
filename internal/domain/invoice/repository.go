package invoice

import (
	"context"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
)

// Repository persists invoices.
type Repository interface {
	// CreateDraft inserts a draft and fills in ID and CreatedAt.
	CreateDraft(ctx context.Context, inv *Invoice) error

	AddItem(ctx context.Context, item *Item) error

	// Finalize sets the number and total of a draft.
	Finalize(ctx context.Context, invoiceID int64, number string, total types.MinorUnits) error

	// GetByID loads an invoice with branch, creator and line detail.
	GetByID(ctx context.Context, invoiceID int64) (*Invoice, error)

	// GetByPublicID is GetByID keyed by the external id.
	GetByPublicID(ctx context.Context, publicID id.ID) (*Invoice, error)
}

// Cache holds finalized invoices by public id.
type Cache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, publicID id.ID) (*Invoice, error)
	Set(ctx context.Context, inv *Invoice) error
}
