package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/tx"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
)

// Mutator is the only writer of stock quantities.
type Mutator struct {
	repo Repository
	txm  tx.Manager
	now  func() time.Time
}

// NewMutator creates a stock mutator.
func NewMutator(repo Repository, txm tx.Manager) *Mutator {
	return &Mutator{
		repo: repo,
		txm:  txm,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Apply changes one (branch, product) quantity by m.Delta and records the
// ledger entry in the same transaction. It joins the transaction already
// carried by ctx, if any; otherwise it runs its own.
//
// An increment that would overflow int64 fails validation. A decrement below zero fails with an InsufficientStock error carrying the
// available quantity, and nothing is written.
func (m *Mutator) Apply(ctx context.Context, mut Mutation) (Result, error) {
	if err := validateMutation(mut); err != nil {
		return Result{}, err
	}

	var res Result
	err := m.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := m.repo.LockItem(ctx, mut.BranchID, mut.ProductID)
		if err != nil {
			return fmt.Errorf("lock stock item: %w", err)
		}

		newQuantity, ok := types.AddInt64(item.Quantity, mut.Delta)
		if !ok {
			return apperror.NewValidation(fmt.Sprintf("quantity change %d overflows stock of %d", mut.Delta, item.Quantity)).
				WithDetail("product_id", mut.ProductID.String())
		}
		if mut.Delta < 0 && newQuantity < 0 {
			return apperror.NewInsufficientStock(mut.ProductID.String(), mut.displayName(), -mut.Delta, item.Quantity)
		}

		now := m.now().Truncate(time.Microsecond)
		item.Quantity = newQuantity
		item.UpdatedAt = now
		if err := m.repo.SetQuantity(ctx, &item); err != nil {
			return fmt.Errorf("set quantity: %w", err)
		}

		txn := StockTxn{
			ID:        id.New(),
			Type:      mut.Type,
			BranchID:  mut.BranchID,
			ProductID: mut.ProductID,
			QtyChange: mut.Delta,
			Note:      mut.Note,
			CreatedBy: mut.ActorID,
			CreatedAt: now,
		}
		if err := m.repo.AppendTxn(ctx, &txn); err != nil {
			return fmt.Errorf("append txn: %w", err)
		}

		res = Result{Item: item, Txn: txn}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func validateMutation(mut Mutation) error {
	if id.IsNil(mut.BranchID) {
		return apperror.NewValidation("branch_id is required")
	}
	if id.IsNil(mut.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if id.IsNil(mut.ActorID) {
		return apperror.NewValidation("actor is required")
	}
	if !mut.Type.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown transaction type %q", mut.Type))
	}
	if !mut.Type.AcceptsDelta(mut.Delta) {
		return apperror.NewValidation(fmt.Sprintf("quantity change %d is not allowed for %s", mut.Delta, mut.Type))
	}
	return nil
}

func (mut Mutation) displayName() string {
	if mut.ProductName != "" {
		return mut.ProductName
	}
	return mut.ProductID.String()
}
