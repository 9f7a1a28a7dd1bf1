package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactories_KindAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		kind   Kind
		status int
	}{
		{"validation", NewValidation("bad"), KindValidation, http.StatusBadRequest},
		{"not found", NewNotFound("branch", "b1"), KindNotFound, http.StatusNotFound},
		{"inactive", NewInactive("product", "p1"), KindInactive, http.StatusConflict},
		{"insufficient", NewInsufficientStock("p1", "Cola", 3, 1), KindInsufficientStock, http.StatusConflict},
		{"duplicate", NewDuplicate("user", "email", "a@b.c"), KindDuplicate, http.StatusConflict},
		{"conflict", NewConflict("Product inactive"), KindConflict, http.StatusConflict},
		{"already exists", NewAlreadyExists("Record already exists"), KindDuplicate, http.StatusConflict},
		{"concurrent update", NewConcurrentUpdate(), KindConflict, http.StatusConflict},
		{"internal", NewInternal(errors.New("boom")), KindInternal, http.StatusInternalServerError},
		{"unauthorized", NewUnauthorized("no token"), KindUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("nope"), KindForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestInsufficientStock_CarriesAvailable(t *testing.T) {
	err := NewInsufficientStock("p1", "Cola 330ml", 10, 5)

	assert.Equal(t, "Not enough stock for Cola 330ml. Available: 5", err.Message)
	assert.Equal(t, int64(5), err.Details["available"])
	assert.Equal(t, int64(10), err.Details["requested"])
	assert.True(t, IsInsufficientStock(err))
}

func TestKindOf_WrappedAndPlain(t *testing.T) {
	wrapped := fmt.Errorf("apply sale: %w", NewNotFound("product", "x"))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))

	plain := errors.New("connection refused")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(plain))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := NewInternal(cause)

	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, err.Details)
}
