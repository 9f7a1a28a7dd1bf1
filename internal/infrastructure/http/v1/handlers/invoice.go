package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves finalized invoices.
type InvoiceHandler struct {
	*BaseHandler
	service  *invoice.Service
	decimals int32
}

func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, decimals int32) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service, decimals: decimals}
}

// Get handles GET /invoices/:publicId
func (h *InvoiceHandler) Get(c *gin.Context) {
	publicID, err := id.Parse(c.Param("publicId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid invoice id"))
		return
	}

	inv, err := h.service.GetByPublicID(c.Request.Context(), publicID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv, h.decimals))
}
