// Package checkout turns a point-of-sale basket into stock decrements and
// a finalized invoice, all in one transaction.
package checkout

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/numerator"
	"github.com/PraveenHasintha/inventra-backend/internal/core/tx"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

var tracer = otel.Tracer("inventra/checkout")

// Outcome labels for Recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeShortage = "insufficient_stock"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder observes checkout attempts.
type Recorder interface {
	RecordCheckout(outcome string, lines int, total int64, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordCheckout(string, int, int64, time.Duration) {}

// Line is one basket entry. A nil UnitPrice means the product's selling price.
type Line struct {
	ProductID id.ID
	Qty       int64
	UnitPrice *int64
}

// Request is a checkout basket.
type Request struct {
	BranchID id.ID
	Note     string
	Lines    []Line
	ActorID  id.ID
}

// Service runs checkouts.
type Service struct {
	txm      tx.Manager
	catalogs catalog.Repository
	stock    ledger.Repository
	mutator  *ledger.Mutator
	invoices invoice.Repository
	numbers  *numerator.Sequencer
	recorder Recorder
}

// NewService creates the checkout service. recorder may be nil.
func NewService(
	txm tx.Manager,
	catalogs catalog.Repository,
	stock ledger.Repository,
	mutator *ledger.Mutator,
	invoices invoice.Repository,
	numbers *numerator.Sequencer,
	recorder Recorder,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		txm:      txm,
		catalogs: catalogs,
		stock:    stock,
		mutator:  mutator,
		invoices: invoices,
		numbers:  numbers,
		recorder: recorder,
	}
}

// Checkout validates the basket, checks availability for every line, then
// records one SALE per line against a new invoice. Any failure rolls back
// the whole unit: no invoice, item, ledger entry or quantity change survives.
func (s *Service) Checkout(ctx context.Context, req Request) (*invoice.Invoice, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "checkout")
	span.SetAttributes(
		attribute.String("branch.id", req.BranchID.String()),
		attribute.Int("checkout.lines", len(req.Lines)),
	)
	defer span.End()

	if err := validate(req); err != nil {
		s.recorder.RecordCheckout(OutcomeRejected, len(req.Lines), 0, time.Since(started))
		return nil, err
	}

	var result *invoice.Invoice
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.run(ctx, req)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		outcome := outcomeOf(err)
		s.recorder.RecordCheckout(outcome, len(req.Lines), 0, time.Since(started))
		if outcome == OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")
		} else {
			logger.Warn(ctx, "checkout rejected", "branch_id", req.BranchID, "lines", len(req.Lines), "error", err)
		}
		return nil, err
	}

	s.recorder.RecordCheckout(OutcomeSuccess, len(req.Lines), int64(result.Total), time.Since(started))
	span.SetAttributes(attribute.String("invoice.no", result.Number()))
	logger.Info(ctx, "checkout completed",
		"invoice_no", result.Number(),
		"branch_id", req.BranchID,
		"lines", len(result.Items),
		"total", result.Total,
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, req Request) (*invoice.Invoice, error) {
	branch, err := s.catalogs.GetBranch(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, apperror.NewInactive("Branch", req.BranchID)
	}

	productIDs := make([]id.ID, 0, len(req.Lines))
	for _, line := range req.Lines {
		productIDs = append(productIDs, line.ProductID)
	}
	productIDs = id.Distinct(productIDs)

	products, err := s.catalogs.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, line := range req.Lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, apperror.NewConflict("Product not found").WithDetail("product_id", line.ProductID.String())
		}
		if !p.IsActive {
			return nil, apperror.NewInactive("Product", line.ProductID)
		}
	}

	if err := s.precheck(ctx, req, productIDs, products); err != nil {
		return nil, err
	}

	if err := s.lockItems(ctx, req.BranchID, productIDs); err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		PublicID:  id.New(),
		BranchID:  req.BranchID,
		CreatedBy: req.ActorID,
		Note:      req.Note,
	}
	if err := s.invoices.CreateDraft(ctx, inv); err != nil {
		return nil, fmt.Errorf("create draft invoice: %w", err)
	}
	number := s.numbers.Number(inv.ID)

	var total types.MinorUnits
	for i, line := range req.Lines {
		product := products[line.ProductID]

		price := product.SellingPrice
		if line.UnitPrice != nil {
			price = types.MinorUnits(*line.UnitPrice)
		}
		lineTotal, ok := price.Mul(line.Qty)
		if !ok {
			return nil, apperror.NewValidation(fmt.Sprintf("line %d: amount is out of range", i+1))
		}
		if total, ok = total.Add(lineTotal); !ok {
			return nil, apperror.NewValidation("invoice total is out of range")
		}

		if _, err := s.mutator.Apply(ctx, ledger.Mutation{
			BranchID:    req.BranchID,
			ProductID:   line.ProductID,
			Delta:       -line.Qty,
			Type:        ledger.TxnSale,
			ActorID:     req.ActorID,
			Note:        number,
			ProductName: product.Name,
		}); err != nil {
			return nil, err
		}

		item := &invoice.Item{
			InvoiceID: inv.ID,
			LineNo:    i + 1,
			ProductID: line.ProductID,
			Qty:       line.Qty,
			UnitPrice: price,
			LineTotal: lineTotal,
		}
		if err := s.invoices.AddItem(ctx, item); err != nil {
			return nil, fmt.Errorf("add invoice item %d: %w", item.LineNo, err)
		}
	}

	if err := s.invoices.Finalize(ctx, inv.ID, number, total); err != nil {
		return nil, fmt.Errorf("finalize invoice: %w", err)
	}

	full, err := s.invoices.GetByID(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return full, nil
}

// lockItems takes the row lock of every basket product in id order, so two
// baskets sharing products always lock them in the same sequence.
func (s *Service) lockItems(ctx context.Context, branchID id.ID, productIDs []id.ID) error {
	ordered := slices.Clone(productIDs)
	slices.SortFunc(ordered, id.Compare)
	for _, productID := range ordered {
		if _, err := s.stock.LockItem(ctx, branchID, productID); err != nil {
			return fmt.Errorf("lock stock item: %w", err)
		}
	}
	return nil
}

// precheck compares the summed demand per product with the current quantity
// before anything is written. It takes no locks; Mutator.Apply re-checks
// each line under its row lock.
func (s *Service) precheck(ctx context.Context, req Request, productIDs []id.ID, products map[id.ID]*catalog.Product) error {
	available, err := s.stock.GetQuantities(ctx, req.BranchID, productIDs)
	if err != nil {
		return fmt.Errorf("read quantities: %w", err)
	}

	demand := make(map[id.ID]int64, len(productIDs))
	for _, line := range req.Lines {
		demand[line.ProductID] += line.Qty
	}

	for _, productID := range productIDs {
		if demand[productID] > available[productID] {
			p := products[productID]
			return apperror.NewInsufficientStock(productID.String(), p.Name, demand[productID], available[productID])
		}
	}
	return nil
}

func validate(req Request) error {
	if id.IsNil(req.BranchID) {
		return apperror.NewValidation("branch_id is required")
	}
	if id.IsNil(req.ActorID) {
		return apperror.NewValidation("actor is required")
	}
	if len(req.Lines) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	demand := make(map[id.ID]int64, len(req.Lines))
	for i, line := range req.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("line %d: product_id is required", i+1))
		}
		if line.Qty <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: qty must be positive", i+1))
		}
		if line.UnitPrice != nil && *line.UnitPrice < 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: unit_price must not be negative", i+1))
		}
		sum, ok := types.AddInt64(demand[line.ProductID], line.Qty)
		if !ok {
			return apperror.NewValidation(fmt.Sprintf("line %d: total qty for product is out of range", i+1))
		}
		demand[line.ProductID] = sum
	}
	return nil
}

func outcomeOf(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindInsufficientStock:
		return OutcomeShortage
	case apperror.KindInternal:
		return OutcomeError
	default:
		return OutcomeRejected
	}
}
