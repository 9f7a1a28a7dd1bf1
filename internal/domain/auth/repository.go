package auth

import (
	"context"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateLoginState persists the failed-attempt counter, lock and last login.
	UpdateLoginState(ctx context.Context, user *User) error
}
