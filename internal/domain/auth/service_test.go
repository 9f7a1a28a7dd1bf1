package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

type fakeUserRepo struct {
	users   map[string]*User
	updates int
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.users[strings.ToLower(user.Email)] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("User", userID)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := r.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("User", email)
}

func (r *fakeUserRepo) UpdateLoginState(_ context.Context, _ *User) error {
	r.updates++
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *JWTService) {
	t.Helper()
	repo := &fakeUserRepo{users: map[string]*User{}}
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(repo, jwtSvc, ServiceConfig{MaxLoginAttempts: 2, LockDuration: time.Minute, PasswordMinLength: 8})

	hash, err := svc.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), NewUser("cashier@example.com", hash, "Cashier", RoleCashier)))
	return svc, repo, jwtSvc
}

func TestLogin_IssuesTokenWithRolePermissions(t *testing.T) {
	svc, repo, jwtSvc := newTestService(t)

	token, user, err := svc.Login(context.Background(), Credentials{Email: "Cashier@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotNil(t, user.LastLoginAt)
	assert.Equal(t, 1, repo.updates)

	uc, err := jwtSvc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, []string{RoleCashier}, uc.Roles)
	assert.True(t, uc.HasPermission(PermCheckoutCreate))
	assert.False(t, uc.HasPermission(PermStockWrite))
}

func TestLogin_WrongPasswordLocksAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := svc.Login(ctx, Credentials{Email: "cashier@example.com", Password: "wrong-password"})
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	}

	_, _, err := svc.Login(ctx, Credentials{Email: "cashier@example.com", Password: "correct-horse"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestLogin_UnknownAndInactive(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "whatever1"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	repo.users["cashier@example.com"].IsActive = false
	_, _, err = svc.Login(ctx, Credentials{Email: "cashier@example.com", Password: "correct-horse"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, _, err = svc.Login(ctx, Credentials{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestHashPassword_TooShort(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.HashPassword("short")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken(NewUser("a@b.c", "", "A"), nil)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestPermissionsFor_Deduplicates(t *testing.T) {
	perms := PermissionsFor([]string{RoleCashier, RoleManager, "unknown"})
	assert.ElementsMatch(t, []string{PermStockRead, PermCheckoutCreate, PermInvoiceRead, PermStockWrite}, perms)
}
