package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/dto"
)

// StockHandler serves stock mutations and ledger reads.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Receive handles POST /stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, ok := h.input(c, req.StockTarget)
	if !ok {
		return
	}

	result, err := h.service.Receive(c.Request.Context(), in, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromResult(result))
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, ok := h.input(c, req.StockTarget)
	if !ok {
		return
	}

	result, err := h.service.Adjust(c.Request.Context(), in, *req.NewQuantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromResult(result))
}

// Reduce handles POST /stock/reduce
func (h *StockHandler) Reduce(c *gin.Context) {
	var req dto.ReduceStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, ok := h.input(c, req.StockTarget)
	if !ok {
		return
	}

	result, err := h.service.Reduce(c.Request.Context(), in, req.Quantity, ledger.TxnType(req.Kind))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromResult(result))
}

// GetItem handles GET /stock/items
func (h *StockHandler) GetItem(c *gin.Context) {
	var q dto.StockItemQuery
	if !h.BindQuery(c, &q) {
		return
	}
	branchID, productID, err := q.IDs()
	if err != nil {
		h.Error(c, err)
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), branchID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStockItem(item))
}

// ListLedger handles GET /stock/ledger
func (h *StockHandler) ListLedger(c *gin.Context) {
	var req dto.LedgerQueryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	page, err := h.service.ListLedger(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLedgerPage(page))
}

func (h *StockHandler) input(c *gin.Context, target dto.StockTarget) (ledger.StockInput, bool) {
	actor, err := h.ActorID(c)
	if err != nil {
		h.Error(c, err)
		return ledger.StockInput{}, false
	}
	in, err := target.ToInput(actor)
	if err != nil {
		h.Error(c, err)
		return ledger.StockInput{}, false
	}
	return in, true
}
