package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	appctx "github.com/PraveenHasintha/inventra-backend/internal/core/context"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1/middleware"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers err on the Gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ActorID returns the authenticated user's id.
func (h *BaseHandler) ActorID(c *gin.Context) (id.ID, error) {
	raw := appctx.GetUserID(c.Request.Context())
	if raw == "" {
		return id.ID{}, apperror.NewUnauthorized("authentication required")
	}
	actor, err := id.Parse(raw)
	if err != nil {
		return id.ID{}, apperror.NewUnauthorized("invalid subject in token")
	}
	return actor, nil
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, data)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.respond(c, http.StatusCreated, data)
}

// respond writes data as JSON and stores the same bytes for idempotent replay.
func (h *BaseHandler) respond(c *gin.Context, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	if key, store, ok := middleware.IdempotencyFrom(c); ok {
		if err := store.CompleteKey(c.Request.Context(), key, status, "application/json", body); err != nil {
			logger.Warn(c.Request.Context(), "idempotency complete failed", "key", key, "error", err)
		}
	}

	c.Data(status, "application/json; charset=utf-8", body)
}
