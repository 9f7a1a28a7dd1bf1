// Package catalog_repo reads branches and products.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/infrastructure/storage/postgres"
)

var (
	branchColumns  = []string{"id", "code", "name", "is_active"}
	productColumns = []string{"id", "sku", "name", "selling_price", "is_active"}
)

var _ catalog.Repository = (*Repo)(nil)

// Repo implements catalog.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a catalog repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) GetBranch(ctx context.Context, branchID id.ID) (*catalog.Branch, error) {
	sql, args, err := r.builder.Select(branchColumns...).
		From("branches").
		Where(squirrel.Eq{"id": branchID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b catalog.Branch
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("Branch", branchID)
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

func (r *Repo) GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	sql, args, err := r.builder.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("Product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *Repo) GetProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]*catalog.Product, error) {
	out := make(map[id.ID]*catalog.Product, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.builder.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": productIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*catalog.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// CreateBranch inserts a branch. Used by the seed command.
func (r *Repo) CreateBranch(ctx context.Context, b *catalog.Branch) error {
	sql, args, err := r.builder.Insert("branches").
		Columns(branchColumns...).
		Values(b.ID, b.Code, b.Name, b.IsActive).
		Suffix("ON CONFLICT (code) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert branch: %w", err))
	}
	return nil
}

// CreateProduct inserts a product. Used by the seed command.
func (r *Repo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	sql, args, err := r.builder.Insert("products").
		Columns(productColumns...).
		Values(p.ID, p.SKU, p.Name, p.SellingPrice, p.IsActive).
		Suffix("ON CONFLICT (sku) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert product: %w", err))
	}
	return nil
}
