package entity

import "github.com/shopspring/decimal"

// TaxLookupResult locality label ("City, State") and sales tax rate as a fraction in [0,1).
type TaxLookupResult struct {
	Locality string
	Rate     decimal.Decimal
}
