package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/domain/checkout"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/dto"
)

// CheckoutHandler serves checkout and invoice lookup.
type CheckoutHandler struct {
	*BaseHandler
	checkout *checkout.Service
	invoices *invoice.Service
	decimals int32
}

// NewCheckoutHandler creates a checkout handler. decimals is the currency's
// fractional digit count used when rendering amounts.
func NewCheckoutHandler(base *BaseHandler, co *checkout.Service, invoices *invoice.Service, decimals int32) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler: base,
		checkout:    co,
		invoices:    invoices,
		decimals:    decimals,
	}
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actor, err := h.ActorID(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	domainReq, err := req.ToDomain(actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.checkout.Checkout(ctx, domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.invoices.Remember(ctx, inv)

	h.Created(c, dto.FromInvoice(inv, h.decimals))
}
