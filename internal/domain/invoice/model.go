// Package invoice models sales invoices produced by checkout.
package invoice

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
)

// Invoice is created as a draft to obtain its sequence id, then finalized
// with a number and total in the same transaction. A committed invoice is
// always finalized.
type Invoice struct {
	// ID is the internal sequence id the number is derived from.
	ID          int64            `db:"id" json:"-"`
	PublicID    id.ID            `db:"public_id" json:"id"`
	InvoiceNo   *string          `db:"invoice_no" json:"invoiceNo"`
	BranchID    id.ID            `db:"branch_id" json:"branchId"`
	CreatedBy   id.ID            `db:"created_by" json:"createdBy"`
	Note        string           `db:"note" json:"note,omitempty"`
	Total       types.MinorUnits `db:"total" json:"total"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	FinalizedAt *time.Time       `db:"finalized_at" json:"finalizedAt,omitempty"`

	Branch  *BranchRef `db:"-" json:"branch,omitempty"`
	Creator *ActorRef  `db:"-" json:"creator,omitempty"`
	Items   []Item     `db:"-" json:"items"`
}

// IsFinal reports whether the invoice has been numbered.
func (inv *Invoice) IsFinal() bool {
	return inv.InvoiceNo != nil
}

// Number returns the invoice number, or "" for a draft.
func (inv *Invoice) Number() string {
	if inv.InvoiceNo == nil {
		return ""
	}
	return *inv.InvoiceNo
}

// Item is one invoice line. LineTotal = Qty * UnitPrice.
type Item struct {
	InvoiceID int64            `db:"invoice_id" json:"-"`
	LineNo    int              `db:"line_no" json:"lineNo"`
	ProductID id.ID            `db:"product_id" json:"productId"`
	Qty       int64            `db:"qty" json:"qty"`
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	LineTotal types.MinorUnits `db:"line_total" json:"lineTotal"`

	Product *ProductRef `db:"-" json:"product,omitempty"`
}

// BranchRef is the branch detail shown on an invoice.
type BranchRef struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// ActorRef is the user who created an invoice.
type ActorRef struct {
	ID       id.ID  `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"fullName"`
}

// ProductRef is the product detail shown on an invoice line.
type ProductRef struct {
	ID   id.ID  `db:"id" json:"id"`
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`
}
