package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/metrics"
)

// Ledger is the authoritative cart state: product -> quantity with the two
// derived aggregates. Every mutation runs to completion under the lock and
// recomputes both aggregates before anyone can observe the lines, so a
// snapshot never pairs stale totals with updated lines.
//
// All mutations are total: they never fail, and mutations against an absent
// product id are no-ops rather than errors.
type Ledger struct {
	mu          sync.Mutex
	lines       []domain.CartLine
	totalItems  int
	totalAmount decimal.Decimal
	collector   *metrics.Collector
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{totalAmount: decimal.Zero}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Ledger)

// WithCollector reports mutation counts to the given metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(l *Ledger) { l.collector = c }
}

// AddItem increments the quantity of an existing line by 1, or appends a new
// line with quantity 1. Insertion order of existing lines is preserved; new
// products go last.
func (l *Ledger) AddItem(p domain.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].Product.ID == p.ID {
			l.lines[i].Quantity++
			l.recompute()
			l.count("add")
			return
		}
	}
	l.lines = append(l.lines, domain.CartLine{Product: p, Quantity: 1})
	l.recompute()
	l.count("add")
}

// SetQuantity sets the quantity of an existing line, removing it when the
// quantity is <= 0. A missing product id is a no-op, never an insert.
func (l *Ledger) SetQuantity(productID int64, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
		} else {
			l.lines[i].Quantity = quantity
		}
		l.recompute()
		l.count("set_quantity")
		return
	}
}

// RemoveItem removes the line for productID if present; no-op otherwise.
// Calling it twice has the same effect as once.
func (l *Ledger) RemoveItem(productID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.lines {
		if l.lines[i].Product.ID == productID {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			l.recompute()
			l.count("remove")
			return
		}
	}
}

// Clear empties the cart. Idempotent.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.lines) == 0 {
		return
	}
	l.lines = nil
	l.recompute()
	l.count("clear")
}

// Snapshot returns a copy of the cart. The lines slice is copied so callers
// can hold it across later mutations.
func (l *Ledger) Snapshot() domain.Cart {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]domain.CartLine, len(l.lines))
	copy(lines, l.lines)
	return domain.Cart{
		Lines:       lines,
		TotalItems:  l.totalItems,
		TotalAmount: l.totalAmount,
	}
}

func (l *Ledger) TotalItems() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalItems
}

func (l *Ledger) TotalAmount() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalAmount
}

// recompute re-scans the full line collection. Cheap at cart scale, and it
// keeps the aggregates impossible to desynchronize from the lines.
// Caller must hold the lock.
func (l *Ledger) recompute() {
	items := 0
	amount := decimal.Zero
	for _, line := range l.lines {
		items += line.Quantity
		amount = amount.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	l.totalItems = items
	l.totalAmount = amount
}

func (l *Ledger) count(op string) {
	if l.collector != nil {
		l.collector.RecordCartMutation(op)
	}
}
