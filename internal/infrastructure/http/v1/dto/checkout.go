package dto

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/checkout"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
)

// CheckoutLineRequest is one basket line. unitPrice in minor units overrides
// the product's selling price.
type CheckoutLineRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Qty       int64  `json:"qty" binding:"required,gt=0"`
	UnitPrice *int64 `json:"unitPrice" binding:"omitempty,gte=0"`
}

// CheckoutRequest for POST /checkout.
type CheckoutRequest struct {
	BranchID string                `json:"branchId" binding:"required,uuid"`
	Note     string                `json:"note" binding:"max=500"`
	Lines    []CheckoutLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToDomain converts to a checkout request for actor.
func (r CheckoutRequest) ToDomain(actor id.ID) (checkout.Request, error) {
	branchID, err := parseID("branchId", r.BranchID)
	if err != nil {
		return checkout.Request{}, err
	}

	lines := make([]checkout.Line, len(r.Lines))
	for i, l := range r.Lines {
		productID, err := parseID("lines.productId", l.ProductID)
		if err != nil {
			return checkout.Request{}, err
		}
		lines[i] = checkout.Line{ProductID: productID, Qty: l.Qty, UnitPrice: l.UnitPrice}
	}

	return checkout.Request{
		BranchID: branchID,
		Note:     r.Note,
		Lines:    lines,
		ActorID:  actor,
	}, nil
}

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	LineNo    int    `json:"lineNo"`
	ProductID string `json:"productId"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Qty       int64  `json:"qty"`
	UnitPrice Money  `json:"unitPrice"`
	LineTotal Money  `json:"lineTotal"`
}

// PartyResponse names a branch or an actor on an invoice.
type PartyResponse struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// InvoiceResponse represents a finalized invoice.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	InvoiceNo   string                `json:"invoiceNo"`
	Branch      *PartyResponse        `json:"branch,omitempty"`
	Cashier     *PartyResponse        `json:"cashier,omitempty"`
	Note        string                `json:"note,omitempty"`
	Total       Money                 `json:"total"`
	Items       []InvoiceItemResponse `json:"items"`
	CreatedAt   time.Time             `json:"createdAt"`
	FinalizedAt *time.Time            `json:"finalizedAt,omitempty"`
}

// FromInvoice converts an invoice, rendering money with decimals fractional digits.
func FromInvoice(inv *invoice.Invoice, decimals int32) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.PublicID.String(),
		InvoiceNo:   inv.Number(),
		Note:        inv.Note,
		Total:       NewMoney(inv.Total, decimals),
		Items:       make([]InvoiceItemResponse, len(inv.Items)),
		CreatedAt:   inv.CreatedAt,
		FinalizedAt: inv.FinalizedAt,
	}
	if inv.Branch != nil {
		resp.Branch = &PartyResponse{ID: inv.Branch.ID.String(), Code: inv.Branch.Code, Name: inv.Branch.Name}
	}
	if inv.Creator != nil {
		resp.Cashier = &PartyResponse{ID: inv.Creator.ID.String(), Name: inv.Creator.FullName}
	}

	for i, it := range inv.Items {
		line := InvoiceItemResponse{
			LineNo:    it.LineNo,
			ProductID: it.ProductID.String(),
			Qty:       it.Qty,
			UnitPrice: NewMoney(it.UnitPrice, decimals),
			LineTotal: NewMoney(it.LineTotal, decimals),
		}
		if it.Product != nil {
			line.SKU = it.Product.SKU
			line.Name = it.Product.Name
		}
		resp.Items[i] = line
	}
	return resp
}
