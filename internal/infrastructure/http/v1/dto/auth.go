package dto

import (
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// TokenResponse represents an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// FromToken creates response from domain token.
func FromToken(t *auth.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken: t.AccessToken,
		ExpiresAt:   t.ExpiresAt,
		TokenType:   t.TokenType,
	}
}

// UserResponse represents user in API response.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// FromUser creates response from domain user.
func FromUser(u *auth.User) *UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	perms := auth.PermissionsFor(u.Roles)
	if perms == nil {
		perms = []string{}
	}
	return &UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Roles:       roles,
		Permissions: perms,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
	}
}

// LoginResponse includes token and user info.
type LoginResponse struct {
	Token *TokenResponse `json:"token"`
	User  *UserResponse  `json:"user"`
}
