package entity

import "github.com/shopspring/decimal"

// LineItem one entry of a cart. Immutable once added.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount unitPrice * quantity, unrounded.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
