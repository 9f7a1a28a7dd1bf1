// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
)

const userColumns = `id, email, password_hash, full_name, roles,
	is_active, is_admin, last_login_at, failed_login_attempts, locked_until, created_at`

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, roles, is_active, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Roles,
		user.IsActive, user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("User", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.txm.GetQuerier(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("User", email)
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// UpdateLoginState persists login bookkeeping.
func (r *UserRepo) UpdateLoginState(ctx context.Context, user *auth.User) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		UPDATE users
		SET failed_login_attempts = $2, locked_until = $3, last_login_at = $4
		WHERE id = $1
	`, user.ID, user.FailedLoginAttempts, user.LockedUntil, user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("update login state: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Roles,
		&user.IsActive, &user.IsAdmin, &user.LastLoginAt, &user.FailedLoginAttempts,
		&user.LockedUntil, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
