// Package tx defines the unit-of-work abstraction used by domain services.
// The implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
//
// If fn returns an error the transaction is rolled back, otherwise it is
// committed. Nested calls reuse the transaction already carried by ctx, so a
// domain operation can be composed into a larger unit without knowing it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
