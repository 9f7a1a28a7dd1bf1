// Package memory is an in-process implementation of the storage
// interfaces. Transactions are serialized and roll back by restoring a
// snapshot, which gives the same observable outcomes as row locks on a
// single database. Used by unit tests and local experiments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/internal/core/tx"
	"github.com/PraveenHasintha/inventra-backend/internal/core/types"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/catalog"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/invoice"
	"github.com/PraveenHasintha/inventra-backend/internal/domain/ledger"
)

var (
	_ tx.Manager         = (*Store)(nil)
	_ catalog.Repository = (*Store)(nil)
	_ ledger.Repository  = (*Store)(nil)
	_ invoice.Repository = (*Store)(nil)
)

type itemKey struct {
	branch  id.ID
	product id.ID
}

type state struct {
	branches map[id.ID]catalog.Branch
	products map[id.ID]catalog.Product
	actors   map[id.ID]invoice.ActorRef
	items    map[itemKey]ledger.StockItem
	txns     []ledger.StockTxn
	invoices map[int64]invoice.Invoice
	lines    map[int64][]invoice.Item
}

func newState() state {
	return state{
		branches: make(map[id.ID]catalog.Branch),
		products: make(map[id.ID]catalog.Product),
		actors:   make(map[id.ID]invoice.ActorRef),
		items:    make(map[itemKey]ledger.StockItem),
		invoices: make(map[int64]invoice.Invoice),
		lines:    make(map[int64][]invoice.Item),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.branches {
		c.branches[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.actors {
		c.actors[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	c.txns = append([]ledger.StockTxn(nil), s.txns...)
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]invoice.Item(nil), v...)
	}
	return c
}

// Store holds all tables in memory.
type Store struct {
	txLock sync.Mutex // held for the whole of a top-level transaction

	mu     sync.Mutex
	data   state
	nextID int64 // invoice sequence; never rolled back
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

// RunInTransaction runs fn as one unit. Nested calls join the outer unit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txLock.Lock()
	defer s.txLock.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// --- fixtures ---

// PutBranch inserts or replaces a branch.
func (s *Store) PutBranch(b catalog.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.branches[b.ID] = b
}

// PutProduct inserts or replaces a product.
func (s *Store) PutProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// PutActor registers a user shown as invoice creator.
func (s *Store) PutActor(a invoice.ActorRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.actors[a.ID] = a
}

// Txns returns every ledger entry in insertion order.
func (s *Store) Txns() []ledger.StockTxn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.StockTxn(nil), s.data.txns...)
}

// InvoiceCount returns the number of stored invoices, drafts included.
func (s *Store) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.invoices)
}

// HasItem reports whether a stock row exists for the pair.
func (s *Store) HasItem(branchID, productID id.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data.items[itemKey{branchID, productID}]
	return ok
}

// --- catalog.Repository ---

func (s *Store) GetBranch(_ context.Context, branchID id.ID) (*catalog.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.branches[branchID]
	if !ok {
		return nil, apperror.NewNotFound("Branch", branchID)
	}
	return &b, nil
}

func (s *Store) GetProduct(_ context.Context, productID id.ID) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("Product", productID)
	}
	return &p, nil
}

func (s *Store) GetProducts(_ context.Context, productIDs []id.ID) (map[id.ID]*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[id.ID]*catalog.Product, len(productIDs))
	for _, pid := range productIDs {
		if p, ok := s.data.products[pid]; ok {
			out[pid] = &p
		}
	}
	return out, nil
}

// --- ledger.Repository ---

func (s *Store) LockItem(_ context.Context, branchID, productID id.ID) (ledger.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := itemKey{branchID, productID}
	item, ok := s.data.items[key]
	if !ok {
		item = ledger.StockItem{BranchID: branchID, ProductID: productID, UpdatedAt: time.Now().UTC()}
		s.data.items[key] = item
	}
	return item, nil
}

func (s *Store) GetItem(_ context.Context, branchID, productID id.ID) (ledger.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.data.items[itemKey{branchID, productID}]; ok {
		return item, nil
	}
	return ledger.StockItem{BranchID: branchID, ProductID: productID}, nil
}

func (s *Store) GetQuantities(_ context.Context, branchID id.ID, productIDs []id.ID) (map[id.ID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[id.ID]int64, len(productIDs))
	for _, pid := range productIDs {
		if item, ok := s.data.items[itemKey{branchID, pid}]; ok {
			out[pid] = item.Quantity
		}
	}
	return out, nil
}

func (s *Store) SetQuantity(_ context.Context, item *ledger.StockItem) error {
	if item.Quantity < 0 {
		return apperror.NewConflict("stock quantity must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.items[itemKey{item.BranchID, item.ProductID}] = *item
	return nil
}

func (s *Store) AppendTxn(_ context.Context, txn *ledger.StockTxn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.txns = append(s.data.txns, *txn)
	return nil
}

func (s *Store) ListTxns(_ context.Context, filter ledger.TxnFilter) ([]ledger.StockTxn, error) {
	s.mu.Lock()
	var out []ledger.StockTxn
	for _, t := range s.data.txns {
		if t.BranchID != filter.BranchID {
			continue
		}
		if filter.ProductID != nil && t.ProductID != *filter.ProductID {
			continue
		}
		if filter.After != nil && !before(t, *filter.After) {
			continue
		}
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return before(out[j], ledger.CursorOf(out[i]))
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// before reports whether t sorts strictly after c in newest-first order,
// that is (created_at, id) < c.
func before(t ledger.StockTxn, c ledger.Cursor) bool {
	if !t.CreatedAt.Equal(c.CreatedAt) {
		return t.CreatedAt.Before(c.CreatedAt)
	}
	return compareIDs(t.ID, c.ID) < 0
}

func compareIDs(a, b id.ID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// --- invoice.Repository ---

func (s *Store) CreateDraft(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	inv.ID = s.nextID
	inv.CreatedAt = time.Now().UTC()
	inv.InvoiceNo = nil
	inv.Total = 0
	s.data.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) AddItem(_ context.Context, item *invoice.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.invoices[item.InvoiceID]; !ok {
		return apperror.NewNotFound("Invoice", item.InvoiceID)
	}
	s.data.lines[item.InvoiceID] = append(s.data.lines[item.InvoiceID], *item)
	return nil
}

func (s *Store) Finalize(_ context.Context, invoiceID int64, number string, total types.MinorUnits) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok {
		return apperror.NewNotFound("Invoice", invoiceID)
	}
	for _, other := range s.data.invoices {
		if other.InvoiceNo != nil && *other.InvoiceNo == number {
			return apperror.NewDuplicate("Invoice", "invoice_no", number)
		}
	}
	now := time.Now().UTC()
	inv.InvoiceNo = &number
	inv.Total = total
	inv.FinalizedAt = &now
	s.data.invoices[invoiceID] = inv
	return nil
}

func (s *Store) GetByID(_ context.Context, invoiceID int64) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("Invoice", invoiceID)
	}
	return s.detail(inv), nil
}

func (s *Store) GetByPublicID(_ context.Context, publicID id.ID) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.data.invoices {
		if inv.PublicID == publicID {
			return s.detail(inv), nil
		}
	}
	return nil, apperror.NewNotFound("Invoice", publicID)
}

// detail must be called with mu held.
func (s *Store) detail(inv invoice.Invoice) *invoice.Invoice {
	if b, ok := s.data.branches[inv.BranchID]; ok {
		inv.Branch = &invoice.BranchRef{ID: b.ID, Code: b.Code, Name: b.Name}
	}
	if a, ok := s.data.actors[inv.CreatedBy]; ok {
		inv.Creator = &a
	}
	items := make([]invoice.Item, 0, len(s.data.lines[inv.ID]))
	for _, it := range s.data.lines[inv.ID] {
		if p, ok := s.data.products[it.ProductID]; ok {
			it.Product = &invoice.ProductRef{ID: p.ID, SKU: p.SKU, Name: p.Name}
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].LineNo < items[j].LineNo })
	inv.Items = items
	return &inv
}
