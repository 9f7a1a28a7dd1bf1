// Package id provides UUIDv7 identifiers for branches, products, users and ledger rows.
// UUIDv7 is time-ordered, so ids double as a stable tiebreak for created_at ordering.
package id

import (
	"bytes"

	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Distinct returns ids without duplicates, keeping first-seen order.
func Distinct(ids []ID) []ID {
	seen := make(map[ID]struct{}, len(ids))
	out := make([]ID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Compare orders ids by their bytes, the same order PostgreSQL uses for UUID.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}
