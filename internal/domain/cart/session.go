// Package cart holds the running cart of a shopping trip.
//
// A Session is not safe for concurrent unsynchronized mutation: AddItem,
// RemoveItem and Finish must be serialized by the caller. The tax rate is the
// only field written from outside the trip (by the tax resolver) and is guarded
// internally so total computation always reads a consistent rate.
package cart

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/pkg/money"
)

var one = decimal.NewFromInt(1)

// Totals read-only projection of the cart amounts, rounded to currency scale.
// EstimatedTotal is Subtotal + SalesTax after rounding each.
type Totals struct {
	Subtotal       decimal.Decimal
	SalesTax       decimal.Decimal
	EstimatedTotal decimal.Decimal
	BudgetExceeded bool
	Overrun        decimal.Decimal // zero unless BudgetExceeded
	TaxRate        decimal.Decimal // fraction the amounts were computed with
}

// BudgetExceeded advisory notification raised after a mutation leaves the cart over budget.
type BudgetExceeded struct {
	Budget         decimal.Decimal
	EstimatedTotal decimal.Decimal
	Overrun        decimal.Decimal
}

// BudgetObserver receives budget notifications. It must not call back into the Session.
type BudgetObserver func(BudgetExceeded)

// Session the ordered cart of one shopping trip.
type Session struct {
	items    []entity.LineItem
	budget   *decimal.Decimal
	observer BudgetObserver

	rateMu  sync.RWMutex
	taxRate decimal.Decimal // fraction, 0.07 = 7%
}

// Option configures a Session.
type Option func(*Session)

// WithBudget sets the trip budget.
func WithBudget(budget decimal.Decimal) Option {
	return func(s *Session) { b := budget; s.budget = &b }
}

// WithTaxRate sets the initial tax rate (fraction).
func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Session) { s.taxRate = rate }
}

// WithBudgetObserver registers the budget notification callback.
func WithBudgetObserver(fn BudgetObserver) Option {
	return func(s *Session) { s.observer = fn }
}

// New creates an empty cart. Budget must be > 0 when set and the tax rate in [0,1).
func New(opts ...Option) (*Session, error) {
	s := &Session{taxRate: decimal.Zero}
	for _, opt := range opts {
		opt(s)
	}
	if s.budget != nil && !s.budget.IsPositive() {
		return nil, fmt.Errorf("cart: budget must be positive: %w", domain.ErrInvalidInput)
	}
	if !validRate(s.taxRate) {
		return nil, fmt.Errorf("cart: tax rate out of [0,1): %w", domain.ErrInvalidInput)
	}
	return s, nil
}

// AddItem appends an item and returns the new totals.
func (s *Session) AddItem(name string, unitPrice decimal.Decimal, quantity int) (Totals, error) {
	name = strings.TrimSpace(name)
	if name == "" || unitPrice.IsNegative() || quantity < 1 {
		return s.Totals(), domain.ErrInvalidInput
	}
	s.items = append(s.items, entity.LineItem{Name: name, UnitPrice: unitPrice, Quantity: quantity})
	return s.afterMutation(), nil
}

// RemoveItem removes the item at index. An invalid index fails with domain.ErrOutOfRange
// and leaves the cart untouched.
func (s *Session) RemoveItem(index int) (Totals, error) {
	if index < 0 || index >= len(s.items) {
		return s.Totals(), fmt.Errorf("cart: remove index %d of %d: %w", index, len(s.items), domain.ErrOutOfRange)
	}
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	return s.afterMutation(), nil
}

// Items copy of the current items in insertion order.
func (s *Session) Items() []entity.LineItem {
	out := make([]entity.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len number of items.
func (s *Session) Len() int { return len(s.items) }

// Budget the trip budget, nil when not set.
func (s *Session) Budget() *decimal.Decimal {
	if s.budget == nil {
		return nil
	}
	b := *s.budget
	return &b
}

// SetTaxRate replaces the tax rate (fraction in [0,1)). Safe to call from any goroutine.
func (s *Session) SetTaxRate(rate decimal.Decimal) error {
	if !validRate(rate) {
		return fmt.Errorf("cart: tax rate %s out of [0,1): %w", rate, domain.ErrInvalidInput)
	}
	s.rateMu.Lock()
	s.taxRate = rate
	s.rateMu.Unlock()
	return nil
}

// TaxRate current tax rate (fraction).
func (s *Session) TaxRate() decimal.Decimal {
	s.rateMu.RLock()
	defer s.rateMu.RUnlock()
	return s.taxRate
}

// Subtotal Σ unitPrice·quantity in full precision.
func (s *Session) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.items {
		sum = sum.Add(it.Amount())
	}
	return sum
}

// SalesTax Subtotal · taxRate in full precision.
func (s *Session) SalesTax() decimal.Decimal {
	return s.Subtotal().Mul(s.TaxRate())
}

// EstimatedTotal Subtotal + SalesTax in full precision.
func (s *Session) EstimatedTotal() decimal.Decimal {
	sub := s.Subtotal()
	return sub.Add(sub.Mul(s.TaxRate()))
}

// Totals rounded amounts and the budget flag for the current state.
func (s *Session) Totals() Totals {
	sub := s.Subtotal()
	rate := s.TaxRate()

	t := Totals{
		Subtotal: money.Round(sub),
		SalesTax: money.Round(sub.Mul(rate)),
		Overrun:  decimal.Zero,
		TaxRate:  rate,
	}
	t.EstimatedTotal = t.Subtotal.Add(t.SalesTax)
	if s.budget != nil && t.EstimatedTotal.GreaterThan(*s.budget) {
		t.BudgetExceeded = true
		t.Overrun = t.EstimatedTotal.Sub(*s.budget)
	}
	return t
}

// Finish snapshots the cart into an immutable record. An empty cart fails with
// domain.ErrEmptyCart and is left untouched.
func (s *Session) Finish(store string, at time.Time) (*entity.ShoppingRecord, error) {
	if len(s.items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	t := s.Totals()
	items := make([]entity.RecordItem, len(s.items))
	for i, it := range s.items {
		items[i] = entity.RecordItem{Name: it.Name, Quantity: it.Quantity, Price: it.UnitPrice}
	}
	return &entity.ShoppingRecord{
		ID:             uuid.New().String(),
		Store:          store,
		Date:           at,
		Items:          items,
		Subtotal:       t.Subtotal,
		SalesTax:       t.SalesTax,
		EstimatedTotal: t.EstimatedTotal,
	}, nil
}

func (s *Session) afterMutation() Totals {
	t := s.Totals()
	if t.BudgetExceeded && s.observer != nil {
		s.observer(BudgetExceeded{
			Budget:         *s.budget,
			EstimatedTotal: t.EstimatedTotal,
			Overrun:        t.Overrun,
		})
	}
	return t
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThan(one)
}
