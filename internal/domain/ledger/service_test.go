package ledger_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/memory"
)

type recorder struct {
	mutations map[string]int
	shortages map[string]int
}

func newRecorder() *recorder {
	return &recorder{mutations: map[string]int{}, shortages: map[string]int{}}
}

func (r *recorder) RecordMutation(txnType string, _ int64) { r.mutations[txnType]++ }
func (r *recorder) RecordShortage(txnType string)         { r.shortages[txnType]++ }

type fixture struct {
	store    *memory.Store
	svc      *ledger.Service
	recorder *recorder
	branch   catalog.Branch
	product  catalog.Product
	actor    id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	rec := newRecorder()
	f := &fixture{
		store:    store,
		recorder: rec,
		branch:   catalog.Branch{ID: id.New(), Code: "B1", Name: "Main", IsActive: true},
		product:  catalog.Product{ID: id.New(), SKU: "COLA", Name: "Cola 330ml", SellingPrice: 500, IsActive: true},
		actor:    id.New(),
	}
	store.PutBranch(f.branch)
	store.PutProduct(f.product)
	f.svc = ledger.NewService(store, store, ledger.NewMutator(store, store), store,
		ledger.PageConfig{DefaultLimit: 2, MaxLimit: 3}, rec)
	return f
}

func (f *fixture) input() ledger.StockInput {
	return ledger.StockInput{BranchID: f.branch.ID, ProductID: f.product.ID, ActorID: f.actor}
}

func TestService_Receive_CreatesItem(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Receive(context.Background(), f.input(), 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), res.Item.Quantity)
	txns := f.store.Txns()
	require.Len(t, txns, 1)
	assert.Equal(t, ledger.TxnReceive, txns[0].Type)
	assert.Equal(t, int64(10), txns[0].QtyChange)
	assert.Equal(t, 1, f.recorder.mutations["RECEIVE"])
}

func TestService_Receive_OverflowIsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, f.input(), math.MaxInt64)
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, f.input(), 1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Len(t, f.store.Txns(), 1)
}

func TestService_Receive_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactiveBranch := catalog.Branch{ID: id.New(), Code: "B2", Name: "Closed", IsActive: false}
	inactiveProduct := catalog.Product{ID: id.New(), SKU: "OLD", Name: "Old", IsActive: false}
	f.store.PutBranch(inactiveBranch)
	f.store.PutProduct(inactiveProduct)

	tests := []struct {
		name    string
		branch  id.ID
		product id.ID
		qty     int64
		kind    apperror.Kind
	}{
		{"zero quantity", f.branch.ID, f.product.ID, 0, apperror.KindValidation},
		{"missing branch", id.New(), f.product.ID, 1, apperror.KindNotFound},
		{"missing product", f.branch.ID, id.New(), 1, apperror.KindNotFound},
		{"inactive branch", inactiveBranch.ID, f.product.ID, 1, apperror.KindInactive},
		{"inactive product", f.branch.ID, inactiveProduct.ID, 1, apperror.KindInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ledger.StockInput{BranchID: tt.branch, ProductID: tt.product, ActorID: f.actor}
			_, err := f.svc.Receive(ctx, in, tt.qty)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
	assert.Empty(t, f.store.Txns())
}

func TestService_Adjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, f.input(), 5)
	require.NoError(t, err)

	res, err := f.svc.Adjust(ctx, f.input(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Item.Quantity)
	assert.Equal(t, int64(0), res.Txn.QtyChange)
	assert.Equal(t, ledger.TxnAdjust, res.Txn.Type)

	res, err = f.svc.Adjust(ctx, f.input(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Item.Quantity)
	assert.Equal(t, int64(-3), res.Txn.QtyChange)

	res, err = f.svc.Adjust(ctx, f.input(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Txn.QtyChange)

	assert.Len(t, f.store.Txns(), 4)
	assert.Equal(t, int64(9), sumChanges(f.store.Txns(), f.branch.ID, f.product.ID))

	_, err = f.svc.Adjust(ctx, f.input(), -1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestService_Reduce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, f.input(), 4)
	require.NoError(t, err)

	res, err := f.svc.Reduce(ctx, f.input(), 3, ledger.TxnDamage)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Item.Quantity)
	assert.Equal(t, int64(-3), res.Txn.QtyChange)

	_, err = f.svc.Reduce(ctx, f.input(), 2, ledger.TxnSale)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, "Not enough stock for Cola 330ml. Available: 1", appErr.Message)
	assert.Equal(t, 1, f.recorder.shortages["SALE"])

	_, err = f.svc.Reduce(ctx, f.input(), 1, ledger.TxnAdjust)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	item, err := f.svc.GetItem(ctx, f.branch.ID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Quantity)
	assert.Len(t, f.store.Txns(), 2)
}

func TestService_GetItem_NeverStocked(t *testing.T) {
	f := newFixture(t)

	item, err := f.svc.GetItem(context.Background(), f.branch.ID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), item.Quantity)

	_, err = f.svc.GetItem(context.Background(), id.New(), f.product.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_ListLedger_NewestFirstWithCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, qty := range []int64{1, 2, 3, 4, 5} {
		_, err := f.svc.Receive(ctx, f.input(), qty)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: f.branch.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Items[0].QtyChange)
	assert.Equal(t, int64(4), page.Items[1].QtyChange)
	require.NotEmpty(t, page.NextCursor)

	again, err := f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: f.branch.ID})
	require.NoError(t, err)
	assert.Equal(t, page, again)

	next, err := f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: f.branch.ID, Limit: 10, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 3)
	assert.Equal(t, int64(3), next.Items[0].QtyChange)
	assert.Equal(t, int64(1), next.Items[2].QtyChange)
	assert.Empty(t, next.NextCursor)

	other := id.New()
	empty, err := f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: f.branch.ID, ProductID: &other})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
}

func TestService_ListLedger_RepeatedReadsMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Receive(ctx, f.input(), 10)
	require.NoError(t, err)
	_, err = f.svc.Reduce(ctx, f.input(), 3, ledger.TxnDamage)
	require.NoError(t, err)
	_, err = f.svc.Adjust(ctx, f.input(), 6)
	require.NoError(t, err)

	queries := []ledger.LedgerQuery{
		{BranchID: f.branch.ID},
		{BranchID: f.branch.ID, ProductID: &f.product.ID, Limit: 3},
	}
	first, err := f.svc.ListLedger(ctx, queries[0])
	require.NoError(t, err)
	queries = append(queries, ledger.LedgerQuery{BranchID: f.branch.ID, Cursor: first.NextCursor})

	txnsBefore := len(f.store.Txns())
	for _, q := range queries {
		a, err := f.svc.ListLedger(ctx, q)
		require.NoError(t, err)
		b, err := f.svc.ListLedger(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}

	assert.Len(t, f.store.Txns(), txnsBefore)
	item, err := f.svc.GetItem(ctx, f.branch.ID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), item.Quantity)
}

func TestService_ListLedger_BadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: f.branch.ID, Cursor: "%%%"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.ListLedger(ctx, ledger.LedgerQuery{BranchID: id.New()})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCursor_RoundTrip(t *testing.T) {
	c := ledger.Cursor{CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 123000, time.UTC), ID: id.New()}

	got, err := ledger.DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)

	none, err := ledger.DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, none)
}
