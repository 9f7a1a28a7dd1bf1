// Package ledger_repo stores stock items and the stock transaction log.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
)

const (
	stockItemsTable = "stock_items"
	stockTxnsTable  = "stock_txns"
)

var (
	itemColumns = []string{"branch_id", "product_id", "quantity", "updated_at"}
	txnColumns  = []string{"id", "type", "branch_id", "product_id", "qty_change", "note", "created_by", "created_at"}
)

var _ ledger.Repository = (*StockRepo)(nil)

// StockRepo implements ledger.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// LockItem inserts the row if missing, then locks it with FOR UPDATE.
// Must be called inside a transaction for the lock to mean anything.
func (r *StockRepo) LockItem(ctx context.Context, branchID, productID id.ID) (ledger.StockItem, error) {
	querier := r.txm.GetQuerier(ctx)

	_, err := querier.Exec(ctx, `
		INSERT INTO stock_items (branch_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (branch_id, product_id) DO NOTHING
	`, branchID, productID)
	if err != nil {
		return ledger.StockItem{}, postgres.MapError(fmt.Errorf("ensure stock item: %w", err))
	}

	var item ledger.StockItem
	err = pgxscan.Get(ctx, querier, &item, `
		SELECT branch_id, product_id, quantity, updated_at
		FROM stock_items
		WHERE branch_id = $1 AND product_id = $2
		FOR UPDATE
	`, branchID, productID)
	if err != nil {
		return ledger.StockItem{}, postgres.MapError(fmt.Errorf("lock stock item: %w", err))
	}
	return item, nil
}

// GetItem reads a stock item without locking.
func (r *StockRepo) GetItem(ctx context.Context, branchID, productID id.ID) (ledger.StockItem, error) {
	sql, args, err := r.builder.Select(itemColumns...).
		From(stockItemsTable).
		Where(squirrel.Eq{"branch_id": branchID, "product_id": productID}).
		ToSql()
	if err != nil {
		return ledger.StockItem{}, fmt.Errorf("build query: %w", err)
	}

	var item ledger.StockItem
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.StockItem{BranchID: branchID, ProductID: productID}, nil
		}
		return ledger.StockItem{}, fmt.Errorf("get stock item: %w", err)
	}
	return item, nil
}

// GetQuantities reads quantities for several products at once.
func (r *StockRepo) GetQuantities(ctx context.Context, branchID id.ID, productIDs []id.ID) (map[id.ID]int64, error) {
	out := make(map[id.ID]int64, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.builder.Select(itemColumns...).
		From(stockItemsTable).
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Eq{"product_id": productIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []ledger.StockItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get quantities: %w", err)
	}
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out, nil
}

// SetQuantity writes a new quantity. The table's CHECK keeps it non-negative.
func (r *StockRepo) SetQuantity(ctx context.Context, item *ledger.StockItem) error {
	sql, args, err := r.builder.Update(stockItemsTable).
		Set("quantity", item.Quantity).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"branch_id": item.BranchID, "product_id": item.ProductID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update stock item: %w", err))
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update stock item: %d rows affected", tag.RowsAffected())
	}
	return nil
}

// AppendTxn inserts one ledger entry.
func (r *StockRepo) AppendTxn(ctx context.Context, txn *ledger.StockTxn) error {
	sql, args, err := r.builder.Insert(stockTxnsTable).
		Columns(txnColumns...).
		Values(txn.ID, string(txn.Type), txn.BranchID, txn.ProductID, txn.QtyChange, txn.Note, txn.CreatedBy, txn.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert stock txn: %w", err))
	}
	return nil
}

// ListTxns returns a page of entries, newest first.
func (r *StockRepo) ListTxns(ctx context.Context, filter ledger.TxnFilter) ([]ledger.StockTxn, error) {
	sql, args, err := r.listTxnsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txns []ledger.StockTxn
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &txns, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock txns: %w", err)
	}
	return txns, nil
}

func (r *StockRepo) listTxnsQuery(filter ledger.TxnFilter) squirrel.SelectBuilder {
	q := r.builder.Select(txnColumns...).
		From(stockTxnsTable).
		Where(squirrel.Eq{"branch_id": filter.BranchID})

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.After != nil {
		q = q.Where(squirrel.Expr("(created_at, id) < (?, ?)", filter.After.CreatedAt, filter.After.ID))
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}
