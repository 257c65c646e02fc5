package dto

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount a decimal that travels as a JSON number. Values at currency scale or
// coarser are written with two decimals; finer unit prices keep every digit.
type Amount decimal.Decimal

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount { return Amount(d) }

// Decimal unwraps a.
func (a Amount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

// MarshalJSON writes a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	d := decimal.Decimal(a)
	if d.Exponent() >= -2 {
		return []byte(d.StringFixed(2)), nil
	}
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("amount: null")
	}
	b = bytes.Trim(b, `"`)
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(d)
	return nil
}
