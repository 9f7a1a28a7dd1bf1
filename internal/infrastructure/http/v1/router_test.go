package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/numerator"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/auth"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/checkout"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	v1 "github.com/PraveenHasintha/inventra-backend/internal/infrastructure/http/v1"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/metrics"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/memory"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type apiFixture struct {
	router  *gin.Engine
	jwt     *auth.JWTService
	branch  catalog.Branch
	product catalog.Product
	manager string
	cashier string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	f := &apiFixture{
		jwt:     auth.NewJWTService(auth.DefaultJWTConfig("test-secret")),
		branch:  catalog.Branch{ID: id.New(), Code: "B1", Name: "Main", IsActive: true},
		product: catalog.Product{ID: id.New(), SKU: "COLA", Name: "Cola 330ml", SellingPrice: 250, IsActive: true},
	}
	store.PutBranch(f.branch)
	store.PutProduct(f.product)

	mutator := ledger.NewMutator(store, store)
	ledgerSvc := ledger.NewService(store, store, mutator, store, ledger.DefaultPageConfig(), nil)
	checkoutSvc := checkout.NewService(store, store, store, mutator, store,
		numerator.NewSequencer(numerator.DefaultConfig("INV")), nil)

	f.manager = f.token(t, store, "manager@example.com", auth.RoleManager)
	f.cashier = f.token(t, store, "cashier@example.com", auth.RoleCashier)

	f.router = v1.NewRouter(v1.RouterConfig{
		Logger:           logger.NewFromZap(zap.NewNop()),
		DB:               okPinger{},
		JWTValidator:     f.jwt,
		Ledger:           ledgerSvc,
		Checkout:         checkoutSvc,
		Invoices:         invoice.NewService(store, nil),
		Metrics:          metrics.New(prometheus.NewRegistry()),
		CurrencyDecimals: 2,
		Version:          "test",
	})
	return f
}

func (f *apiFixture) token(t *testing.T, store *memory.Store, email, role string) string {
	t.Helper()
	user := &auth.User{ID: id.New(), Email: email, FullName: role, Roles: []string{role}, IsActive: true}
	store.PutActor(invoice.ActorRef{ID: user.ID, Email: user.Email, FullName: user.FullName})
	token, _, err := f.jwt.GenerateAccessToken(user, auth.PermissionsFor(user.Roles))
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestAPI_ReceiveCheckoutAndRead(t *testing.T) {
	f := newAPI(t)
	target := map[string]any{"branchId": f.branch.ID.String(), "productId": f.product.ID.String()}

	status, body := f.do(t, http.MethodPost, "/api/v1/stock/receive", f.manager, merge(target, map[string]any{"quantity": 10}))
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, float64(10), body["item"].(map[string]any)["quantity"])
	assert.Equal(t, "RECEIVE", body["txn"].(map[string]any)["type"])

	status, body = f.do(t, http.MethodPost, "/api/v1/checkout", f.cashier, map[string]any{
		"branchId": f.branch.ID.String(),
		"lines":    []map[string]any{{"productId": f.product.ID.String(), "qty": 3, "unitPrice": 500}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "INV-000001", body["invoiceNo"])
	total := body["total"].(map[string]any)
	assert.Equal(t, float64(1500), total["minor"])
	assert.Equal(t, "15.00", total["amount"])
	publicID := body["id"].(string)

	status, body = f.do(t, http.MethodGet, "/api/v1/stock/items?branchId="+f.branch.ID.String()+"&productId="+f.product.ID.String(), f.cashier, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["quantity"])

	status, body = f.do(t, http.MethodGet, "/api/v1/stock/ledger?branchId="+f.branch.ID.String(), f.cashier, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "SALE", items[0].(map[string]any)["type"])
	assert.Equal(t, "INV-000001", items[0].(map[string]any)["note"])
	assert.Equal(t, float64(-3), items[0].(map[string]any)["qtyChange"])

	status, body = f.do(t, http.MethodGet, "/api/v1/invoices/"+publicID, f.cashier, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "INV-000001", body["invoiceNo"])
	assert.Len(t, body["items"], 1)
}

func TestAPI_Errors(t *testing.T) {
	f := newAPI(t)
	target := map[string]any{"branchId": f.branch.ID.String(), "productId": f.product.ID.String()}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"no token", http.MethodPost, "/api/v1/stock/receive", "", merge(target, map[string]any{"quantity": 1}), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"cashier cannot receive", http.MethodPost, "/api/v1/stock/receive", f.cashier, merge(target, map[string]any{"quantity": 1}), http.StatusForbidden, "FORBIDDEN"},
		{"zero quantity", http.MethodPost, "/api/v1/stock/receive", f.manager, merge(target, map[string]any{"quantity": 0}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad kind", http.MethodPost, "/api/v1/stock/reduce", f.manager, merge(target, map[string]any{"quantity": 1, "kind": "THEFT"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"shortage", http.MethodPost, "/api/v1/stock/reduce", f.manager, merge(target, map[string]any{"quantity": 1, "kind": "DAMAGE"}), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"unknown branch", http.MethodGet, "/api/v1/stock/ledger?branchId=" + id.New().String(), f.manager, nil, http.StatusNotFound, "NOT_FOUND"},
		{"empty basket", http.MethodPost, "/api/v1/checkout", f.cashier, map[string]any{"branchId": f.branch.ID.String(), "lines": []any{}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown invoice", http.MethodGet, "/api/v1/invoices/" + id.New().String(), f.cashier, nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestAPI_Health(t *testing.T) {
	f := newAPI(t)

	status, body := f.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
