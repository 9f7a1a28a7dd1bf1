package catalog

import (
	"context"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
)

// Repository provides lookups for branches and products.
type Repository interface {
	// GetBranch returns apperror NotFound when the branch does not exist.
	GetBranch(ctx context.Context, branchID id.ID) (*Branch, error)

	// GetProduct returns apperror NotFound when the product does not exist.
	GetProduct(ctx context.Context, productID id.ID) (*Product, error)

	// GetProducts loads products in one round trip. Missing ids are absent
	// from the result; it is not an error.
	GetProducts(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error)
}

// RequireActiveBranch loads a branch and rejects inactive ones.
func RequireActiveBranch(ctx context.Context, repo Repository, branchID id.ID) (*Branch, error) {
	branch, err := repo.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, apperror.NewInactive("Branch", branchID)
	}
	return branch, nil
}

// RequireActiveProduct loads a product and rejects inactive ones.
func RequireActiveProduct(ctx context.Context, repo Repository, productID id.ID) (*Product, error) {
	product, err := repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperror.NewInactive("Product", productID)
	}
	return product, nil
}
