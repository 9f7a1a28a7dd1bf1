package dto

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
)

// --- Request DTOs ---

// StockTarget names the branch and product a mutation applies to.
type StockTarget struct {
	BranchID  string `json:"branchId" binding:"required,uuid"`
	ProductID string `json:"productId" binding:"required,uuid"`
	Note      string `json:"note" binding:"max=500"`
}

// ToInput converts to the ledger input for actor.
func (t StockTarget) ToInput(actor id.ID) (ledger.StockInput, error) {
	branchID, err := parseID("branchId", t.BranchID)
	if err != nil {
		return ledger.StockInput{}, err
	}
	productID, err := parseID("productId", t.ProductID)
	if err != nil {
		return ledger.StockInput{}, err
	}
	return ledger.StockInput{
		BranchID:  branchID,
		ProductID: productID,
		Note:      t.Note,
		ActorID:   actor,
	}, nil
}

// ReceiveStockRequest for POST /stock/receive.
type ReceiveStockRequest struct {
	StockTarget
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// AdjustStockRequest for POST /stock/adjust. NewQuantity is the counted value.
type AdjustStockRequest struct {
	StockTarget
	NewQuantity *int64 `json:"newQuantity" binding:"required,gte=0"`
}

// ReduceStockRequest for POST /stock/reduce.
type ReduceStockRequest struct {
	StockTarget
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
	Kind     string `json:"kind" binding:"required,oneof=SALE DAMAGE"`
}

// StockItemQuery for GET /stock/items.
type StockItemQuery struct {
	BranchID  string `form:"branchId" binding:"required,uuid"`
	ProductID string `form:"productId" binding:"required,uuid"`
}

// IDs returns the parsed branch and product ids.
func (q StockItemQuery) IDs() (id.ID, id.ID, error) {
	branchID, err := parseID("branchId", q.BranchID)
	if err != nil {
		return id.ID{}, id.ID{}, err
	}
	productID, err := parseID("productId", q.ProductID)
	if err != nil {
		return id.ID{}, id.ID{}, err
	}
	return branchID, productID, nil
}

// LedgerQueryRequest for GET /stock/ledger.
type LedgerQueryRequest struct {
	BranchID  string `form:"branchId" binding:"required,uuid"`
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Cursor    string `form:"cursor"`
}

// ToQuery converts to the ledger query.
func (r LedgerQueryRequest) ToQuery() (ledger.LedgerQuery, error) {
	branchID, err := parseID("branchId", r.BranchID)
	if err != nil {
		return ledger.LedgerQuery{}, err
	}
	productID, err := parseOptionalID("productId", r.ProductID)
	if err != nil {
		return ledger.LedgerQuery{}, err
	}
	return ledger.LedgerQuery{
		BranchID:  branchID,
		ProductID: productID,
		Limit:     r.Limit,
		Cursor:    r.Cursor,
	}, nil
}

// --- Response DTOs ---

// StockItemResponse represents a current quantity.
type StockItemResponse struct {
	BranchID  string     `json:"branchId"`
	ProductID string     `json:"productId"`
	Quantity  int64      `json:"quantity"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FromStockItem converts a ledger item. An item that was never mutated has no timestamp.
func FromStockItem(item ledger.StockItem) StockItemResponse {
	resp := StockItemResponse{
		BranchID:  item.BranchID.String(),
		ProductID: item.ProductID.String(),
		Quantity:  item.Quantity,
	}
	if !item.UpdatedAt.IsZero() {
		updated := item.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// StockTxnResponse represents one ledger entry.
type StockTxnResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	BranchID  string    `json:"branchId"`
	ProductID string    `json:"productId"`
	QtyChange int64     `json:"qtyChange"`
	Note      string    `json:"note,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromStockTxn converts a ledger entry.
func FromStockTxn(t ledger.StockTxn) StockTxnResponse {
	return StockTxnResponse{
		ID:        t.ID.String(),
		Type:      string(t.Type),
		BranchID:  t.BranchID.String(),
		ProductID: t.ProductID.String(),
		QtyChange: t.QtyChange,
		Note:      t.Note,
		CreatedBy: t.CreatedBy.String(),
		CreatedAt: t.CreatedAt,
	}
}

// StockMutationResponse is the result of receive, adjust and reduce.
type StockMutationResponse struct {
	Item StockItemResponse `json:"item"`
	Txn  StockTxnResponse  `json:"txn"`
}

// FromResult converts a mutation result.
func FromResult(r ledger.Result) StockMutationResponse {
	return StockMutationResponse{
		Item: FromStockItem(r.Item),
		Txn:  FromStockTxn(r.Txn),
	}
}

// LedgerPageResponse is one page of ledger entries, newest first.
type LedgerPageResponse struct {
	Items      []StockTxnResponse `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// FromLedgerPage converts a ledger page.
func FromLedgerPage(p ledger.LedgerPage) LedgerPageResponse {
	items := make([]StockTxnResponse, len(p.Items))
	for i, t := range p.Items {
		items[i] = FromStockTxn(t)
	}
	return LedgerPageResponse{Items: items, NextCursor: p.NextCursor}
}
