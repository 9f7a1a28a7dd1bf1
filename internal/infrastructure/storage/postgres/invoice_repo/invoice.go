// Package invoice_repo stores invoices and their lines.
package invoice_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
)

var _ invoice.Repository = (*Repo)(nil)

// Repo implements invoice.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates an invoice repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type headerRow struct {
	invoice.Invoice
	BranchCode   string `db:"branch_code"`
	BranchName   string `db:"branch_name"`
	CreatorEmail string `db:"creator_email"`
	CreatorName  string `db:"creator_name"`
}

type itemRow struct {
	invoice.Item
	ProductSKU  string `db:"product_sku"`
	ProductName string `db:"product_name"`
}

// CreateDraft inserts a draft and reads back its sequence id.
func (r *Repo) CreateDraft(ctx context.Context, inv *invoice.Invoice) error {
	sql, args, err := r.builder.Insert("invoices").
		Columns("public_id", "branch_id", "created_by", "note", "total").
		Values(inv.PublicID, inv.BranchID, inv.CreatedBy, inv.Note, 0).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return postgres.MapError(fmt.Errorf("insert invoice: %w", err))
	}
	inv.InvoiceNo = nil
	inv.Total = 0
	return nil
}

// AddItem inserts one invoice line.
func (r *Repo) AddItem(ctx context.Context, item *invoice.Item) error {
	sql, args, err := r.builder.Insert("invoice_items").
		Columns("invoice_id", "line_no", "product_id", "qty", "unit_price", "line_total").
		Values(item.InvoiceID, item.LineNo, item.ProductID, item.Qty, int64(item.UnitPrice), int64(item.LineTotal)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert invoice item: %w", err))
	}
	return nil
}

// Finalize numbers a draft. Finalizing twice is an error.
func (r *Repo) Finalize(ctx context.Context, invoiceID int64, number string, total types.MinorUnits) error {
	sql, args, err := r.builder.Update("invoices").
		Set("invoice_no", number).
		Set("total", int64(total)).
		Set("finalized_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": invoiceID}).
		Where("invoice_no IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("finalize invoice: %w", err))
	}
	if tag.RowsAffected() != 1 {
		return apperror.NewConflict("invoice is not a draft").WithDetail("invoice_id", invoiceID)
	}
	return nil
}

func (r *Repo) headerSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"i.id", "i.public_id", "i.invoice_no", "i.branch_id", "i.created_by",
		"i.note", "i.total", "i.created_at", "i.finalized_at",
		"b.code AS branch_code", "b.name AS branch_name",
		"u.email AS creator_email", "u.full_name AS creator_name",
	).
		From("invoices i").
		Join("branches b ON b.id = i.branch_id").
		Join("users u ON u.id = i.created_by")
}

// GetByID loads an invoice with its detail.
func (r *Repo) GetByID(ctx context.Context, invoiceID int64) (*invoice.Invoice, error) {
	return r.get(ctx, squirrel.Eq{"i.id": invoiceID}, invoiceID)
}

// GetByPublicID loads an invoice by its external id.
func (r *Repo) GetByPublicID(ctx context.Context, publicID id.ID) (*invoice.Invoice, error) {
	return r.get(ctx, squirrel.Eq{"i.public_id": publicID}, publicID)
}

func (r *Repo) get(ctx context.Context, where squirrel.Eq, key any) (*invoice.Invoice, error) {
	sql, args, err := r.headerSelect().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var row headerRow
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("Invoice", key)
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	inv := row.Invoice
	inv.Branch = &invoice.BranchRef{ID: inv.BranchID, Code: row.BranchCode, Name: row.BranchName}
	inv.Creator = &invoice.ActorRef{ID: inv.CreatedBy, Email: row.CreatorEmail, FullName: row.CreatorName}

	items, err := r.items(ctx, querier, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (r *Repo) items(ctx context.Context, querier postgres.Querier, invoiceID int64) ([]invoice.Item, error) {
	sql, args, err := r.builder.Select(
		"it.invoice_id", "it.line_no", "it.product_id", "it.qty", "it.unit_price", "it.line_total",
		"p.sku AS product_sku", "p.name AS product_name",
	).
		From("invoice_items it").
		Join("products p ON p.id = it.product_id").
		Where(squirrel.Eq{"it.invoice_id": invoiceID}).
		OrderBy("it.line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}

	items := make([]invoice.Item, 0, len(rows))
	for _, row := range rows {
		item := row.Item
		item.Product = &invoice.ProductRef{ID: item.ProductID, SKU: row.ProductSKU, Name: row.ProductName}
		items = append(items, item)
	}
	return items, nil
}
