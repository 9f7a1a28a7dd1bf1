// Package ledger owns per-branch stock quantities and the append-only
// transaction log that derives them.
package ledger

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// TxnType classifies a quantity change.
type TxnType string

const (
	TxnReceive TxnType = "RECEIVE"
	TxnAdjust  TxnType = "ADJUST"
	TxnSale    TxnType = "SALE"
	TxnDamage  TxnType = "DAMAGE"
)

// Valid reports whether t is a known type.
func (t TxnType) Valid() bool {
	switch t {
	case TxnReceive, TxnAdjust, TxnSale, TxnDamage:
		return true
	}
	return false
}

// AcceptsDelta reports whether delta has the sign the type requires.
// RECEIVE is strictly positive, SALE and DAMAGE strictly negative,
// ADJUST takes any value including zero.
func (t TxnType) AcceptsDelta(delta int64) bool {
	switch t {
	case TxnReceive:
		return delta > 0
	case TxnSale, TxnDamage:
		return delta < 0
	case TxnAdjust:
		return true
	}
	return false
}

// StockItem is the current quantity of one product at one branch.
// Quantity always equals the sum of QtyChange over the pair's StockTxns.
type StockItem struct {
	BranchID  id.ID     `db:"branch_id" json:"branchId"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StockTxn is one immutable ledger entry.
type StockTxn struct {
	ID        id.ID     `db:"id" json:"id"`
	Type      TxnType   `db:"type" json:"type"`
	BranchID  id.ID     `db:"branch_id" json:"branchId"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	QtyChange int64     `db:"qty_change" json:"qtyChange"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedBy id.ID     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Mutation is a request to change one stock quantity.
type Mutation struct {
	BranchID  id.ID
	ProductID id.ID
	Delta     int64
	Type      TxnType
	ActorID   id.ID
	Note      string

	// ProductName is used in shortage messages. Defaults to the product id.
	ProductName string
}

// Result is the state after a committed mutation.
type Result struct {
	Item StockItem `json:"item"`
	Txn  StockTxn  `json:"txn"`
}
