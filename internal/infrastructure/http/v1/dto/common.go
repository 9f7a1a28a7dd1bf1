// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
)

// Money carries an amount both as exact minor units and as a major-unit string.
type Money struct {
	Minor  int64  `json:"minor"`
	Amount string `json:"amount"`
}

// NewMoney renders m with the given number of fractional digits.
func NewMoney(m types.MinorUnits, decimals int32) Money {
	return Money{Minor: int64(m), Amount: m.Format(decimals)}
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func parseID(field, raw string) (id.ID, error) {
	parsed, err := id.Parse(raw)
	if err != nil || id.IsNil(parsed) {
		return id.ID{}, apperror.NewValidation("invalid " + field).WithDetail("field", field)
	}
	return parsed, nil
}

func parseOptionalID(field, raw string) (*id.ID, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
