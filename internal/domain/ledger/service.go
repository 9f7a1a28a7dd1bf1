package ledger

import (
	"context"
	"fmt"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/tx"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// Recorder observes committed and rejected mutations.
type Recorder interface {
	RecordMutation(txnType string, delta int64)
	RecordShortage(txnType string)
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(string, int64) {}
func (nopRecorder) RecordShortage(string)        {}

// PageConfig bounds ledger listings.
type PageConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPageConfig returns 50 entries per page, at most 200.
func DefaultPageConfig() PageConfig {
	return PageConfig{DefaultLimit: 50, MaxLimit: 200}
}

func (p PageConfig) clamp(limit int) int {
	if limit <= 0 {
		return p.DefaultLimit
	}
	if limit > p.MaxLimit {
		return p.MaxLimit
	}
	return limit
}

// Service exposes the stock operations. Every mutation checks that the
// branch and product exist and are active, then goes through the Mutator
// inside one transaction.
type Service struct {
	repo     Repository
	catalogs catalog.Repository
	mutator  *Mutator
	txm      tx.Manager
	page     PageConfig
	recorder Recorder
}

// NewService creates the ledger service. recorder may be nil.
func NewService(
	repo Repository,
	catalogs catalog.Repository,
	mutator *Mutator,
	txm tx.Manager,
	page PageConfig,
	recorder Recorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if page.DefaultLimit <= 0 || page.MaxLimit < page.DefaultLimit {
		page = DefaultPageConfig()
	}
	return &Service{
		repo:     repo,
		catalogs: catalogs,
		mutator:  mutator,
		txm:      txm,
		page:     page,
		recorder: recorder,
	}
}

// StockInput identifies a target pair and the acting user.
type StockInput struct {
	BranchID  id.ID
	ProductID id.ID
	Note      string
	ActorID   id.ID
}

// Receive adds quantity units of incoming stock.
func (s *Service) Receive(ctx context.Context, in StockInput, quantity int64) (Result, error) {
	if quantity <= 0 {
		return Result{}, apperror.NewValidation("quantity must be positive")
	}
	return s.mutate(ctx, in, TxnReceive, func(StockItem) int64 { return quantity })
}

// Adjust sets the quantity to an absolute counted value. The entry records the
// difference; a recount that matches is logged with a zero change.
func (s *Service) Adjust(ctx context.Context, in StockInput, newQuantity int64) (Result, error) {
	if newQuantity < 0 {
		return Result{}, apperror.NewValidation("new quantity must not be negative")
	}
	return s.mutate(ctx, in, TxnAdjust, func(current StockItem) int64 {
		return newQuantity - current.Quantity
	})
}

// Reduce removes quantity units as a SALE or DAMAGE.
func (s *Service) Reduce(ctx context.Context, in StockInput, quantity int64, kind TxnType) (Result, error) {
	if quantity <= 0 {
		return Result{}, apperror.NewValidation("quantity must be positive")
	}
	if kind != TxnSale && kind != TxnDamage {
		return Result{}, apperror.NewValidation("kind must be SALE or DAMAGE")
	}
	return s.mutate(ctx, in, kind, func(StockItem) int64 { return -quantity })
}

func (s *Service) mutate(ctx context.Context, in StockInput, txnType TxnType, delta func(StockItem) int64) (Result, error) {
	if id.IsNil(in.BranchID) || id.IsNil(in.ProductID) {
		return Result{}, apperror.NewValidation("branch_id and product_id are required")
	}

	var res Result
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := catalog.RequireActiveBranch(ctx, s.catalogs, in.BranchID); err != nil {
			return err
		}
		product, err := catalog.RequireActiveProduct(ctx, s.catalogs, in.ProductID)
		if err != nil {
			return err
		}

		// The delta for ADJUST depends on the current value, so read it under the
		// row lock the mutator is about to take anyway.
		current, err := s.repo.LockItem(ctx, in.BranchID, in.ProductID)
		if err != nil {
			return fmt.Errorf("lock stock item: %w", err)
		}

		res, err = s.mutator.Apply(ctx, Mutation{
			BranchID:    in.BranchID,
			ProductID:   in.ProductID,
			Delta:       delta(current),
			Type:        txnType,
			ActorID:     in.ActorID,
			Note:        in.Note,
			ProductName: product.Name,
		})
		return err
	})
	if err != nil {
		if apperror.IsInsufficientStock(err) {
			s.recorder.RecordShortage(string(txnType))
			logger.Warn(ctx, "stock mutation rejected",
				"type", txnType,
				"branch_id", in.BranchID,
				"product_id", in.ProductID,
				"error", err,
			)
		}
		return Result{}, err
	}

	s.recorder.RecordMutation(string(txnType), res.Txn.QtyChange)
	logger.Info(ctx, "stock mutated",
		"type", txnType,
		"branch_id", in.BranchID,
		"product_id", in.ProductID,
		"delta", res.Txn.QtyChange,
		"quantity", res.Item.Quantity,
	)

	return res, nil
}

// GetItem returns the current quantity of a pair, 0 when it was never stocked.
func (s *Service) GetItem(ctx context.Context, branchID, productID id.ID) (StockItem, error) {
	if _, err := s.catalogs.GetBranch(ctx, branchID); err != nil {
		return StockItem{}, err
	}
	if _, err := s.catalogs.GetProduct(ctx, productID); err != nil {
		return StockItem{}, err
	}
	return s.repo.GetItem(ctx, branchID, productID)
}

// LedgerQuery selects a page of a branch's ledger.
type LedgerQuery struct {
	BranchID  id.ID
	ProductID *id.ID
	Limit     int
	Cursor    string
}

// LedgerPage is one page of entries plus the token for the next one.
type LedgerPage struct {
	Items      []StockTxn `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ListLedger returns entries newest first, bounded by the page limit.
func (s *Service) ListLedger(ctx context.Context, q LedgerQuery) (LedgerPage, error) {
	if id.IsNil(q.BranchID) {
		return LedgerPage{}, apperror.NewValidation("branch_id is required")
	}
	after, err := DecodeCursor(q.Cursor)
	if err != nil {
		return LedgerPage{}, err
	}
	if _, err := s.catalogs.GetBranch(ctx, q.BranchID); err != nil {
		return LedgerPage{}, err
	}

	limit := s.page.clamp(q.Limit)
	txns, err := s.repo.ListTxns(ctx, TxnFilter{
		BranchID:  q.BranchID,
		ProductID: q.ProductID,
		After:     after,
		Limit:     limit + 1,
	})
	if err != nil {
		return LedgerPage{}, fmt.Errorf("list txns: %w", err)
	}

	page := LedgerPage{Items: txns}
	if len(txns) > limit {
		page.Items = txns[:limit]
		page.NextCursor = CursorOf(page.Items[limit-1]).Encode()
	}
	if page.Items == nil {
		page.Items = []StockTxn{}
	}
	return page, nil
}
