package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	appctx "github.com/PraveenHasintha/inventra-backend/internal/core/context"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
)

type storedKey struct {
	status int
	body   []byte
	failed bool
}

type fakeIdempotency struct {
	mu       sync.Mutex
	keys     map[string]*storedKey
	released []string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]*storedKey{}}
}

func (f *fakeIdempotency) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[key]
	if !ok {
		f.keys[key] = &storedKey{}
		return nil, nil
	}
	if k.status == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return &postgres.IdempotencyReplay{StatusCode: k.status, ContentType: "application/json", Body: k.body}, nil
}

func (f *fakeIdempotency) CompleteKey(_ context.Context, key string, status int, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = &storedKey{status: status, body: body}
	return nil
}

func (f *fakeIdempotency) FailKey(_ context.Context, key string, status int, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = &storedKey{status: status, body: body, failed: true}
	return nil
}

func (f *fakeIdempotency) ReleaseKey(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	f.released = append(f.released, key)
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handler gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.Use(extra...)
	r.POST("/x", handler)
	r.GET("/x", handler)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("p1", "Cola", 10, 5))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	assert.Equal(t, "Not enough stock for Cola. Available: 5", body["message"])
	details := body["details"].(map[string]any)
	assert.Equal(t, float64(5), details["available"])
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection reset"))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	body := decode(t, w)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "req-42", body["details"].(map[string]any)["request_id"])
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestErrorHandler_InternalAppErrorIsHidden(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewInternal(errors.New("disk full")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestRecovery_Returns500(t *testing.T) {
	r := gin.New()
	r.Use(Trace(), ErrorHandler(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, decode(t, w)["code"])
}

func withUser(user *appctx.UserContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	tests := []struct {
		name   string
		user   *appctx.UserContext
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"missing permission", &appctx.UserContext{UserID: "u", Permissions: []string{"stock:read"}}, http.StatusForbidden},
		{"granted", &appctx.UserContext{UserID: "u", Permissions: []string{"stock:write"}}, http.StatusNoContent},
		{"admin", &appctx.UserContext{UserID: "u", IsAdmin: true}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mws []gin.HandlerFunc
			if tt.user != nil {
				mws = append(mws, withUser(tt.user))
			}
			mws = append(mws, RequirePermission("stock:write"))
			r := newEngine(ok, mws...)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &appctx.UserContext{UserID: "u-1", Permissions: []string{"stock:read"}}, nil
}

func TestAuth(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
	}, Auth(stubValidator{}))

	tests := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Token good", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.header)
		if tt.status == http.StatusOK {
			assert.Equal(t, "u-1", w.Body.String())
		}
	}
}

func TestIdempotency_ReplaysFailure(t *testing.T) {
	store := newFakeIdempotency()
	calls := 0
	r := newEngine(func(c *gin.Context) {
		calls++
		_ = c.Error(apperror.NewConflict("Product inactive"))
	}, Idempotency(store, nil))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"a":1}`))
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.True(t, store.keys["k-1"].failed)
}

func TestIdempotency_ReleasesOnInternalError(t *testing.T) {
	store := newFakeIdempotency()
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("timeout"))
	}, Idempotency(store, nil))

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	req.Header.Set(HeaderIdempotencyKey, "k-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, []string{"k-2"}, store.released)
	assert.NotContains(t, store.keys, "k-2")
}

func TestIdempotency_SkipsWithoutHeader(t *testing.T) {
	store := newFakeIdempotency()
	r := newEngine(func(c *gin.Context) {
		_, _, ok := IdempotencyFrom(c)
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	}, Idempotency(store, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.keys)
}
