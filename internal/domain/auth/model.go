// Package auth identifies the actor behind every stock mutation.
package auth

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// Permission codes checked by the HTTP layer.
const (
	PermStockRead      = "stock:read"
	PermStockWrite     = "stock:write"
	PermCheckoutCreate = "checkout:create"
	PermInvoiceRead    = "invoice:read"
)

// Built-in roles.
const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)

var rolePermissions = map[string][]string{
	RoleManager: {PermStockRead, PermStockWrite, PermCheckoutCreate, PermInvoiceRead},
	RoleCashier: {PermStockRead, PermCheckoutCreate, PermInvoiceRead},
}

// PermissionsFor flattens the permissions granted by roles, without duplicates.
func PermissionsFor(roles []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range roles {
		for _, p := range rolePermissions[r] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// User represents a system user.
type User struct {
	ID                  id.ID      `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FullName            string     `db:"full_name" json:"fullName"`
	Roles               []string   `db:"roles" json:"roles"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	IsAdmin             bool       `db:"is_admin" json:"isAdmin"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
}

// NewUser creates a new active user.
func NewUser(email, passwordHash, fullName string, roles ...string) *User {
	return &User{
		ID:           id.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// Credentials for login.
type Credentials struct {
	Email    string
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}
