package ledger

import (
	"context"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// Repository persists stock items and ledger entries.
type Repository interface {
	// LockItem makes sure the (branch, product) row exists and holds a row lock
	// on it until the surrounding transaction ends. A new row has quantity 0.
	LockItem(ctx context.Context, branchID, productID id.ID) (StockItem, error)

	// GetItem reads without locking. An absent row yields quantity 0.
	GetItem(ctx context.Context, branchID, productID id.ID) (StockItem, error)

	// GetQuantities reads current quantities for several products at a branch.
	// Products without a row are absent from the map.
	GetQuantities(ctx context.Context, branchID id.ID, productIDs []id.ID) (map[id.ID]int64, error)

	// SetQuantity writes the quantity of a locked row.
	SetQuantity(ctx context.Context, item *StockItem) error

	// AppendTxn inserts a ledger entry. Entries are never updated or deleted.
	AppendTxn(ctx context.Context, txn *StockTxn) error

	// ListTxns returns entries newest first.
	ListTxns(ctx context.Context, filter TxnFilter) ([]StockTxn, error)
}

// TxnFilter selects a page of ledger entries.
type TxnFilter struct {
	BranchID  id.ID
	ProductID *id.ID
	// After continues a listing strictly below this position.
	After *Cursor
	Limit int
}
