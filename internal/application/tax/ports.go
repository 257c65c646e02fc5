package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// Geocoder reverse-geocodes a coordinate to a postal code.
type Geocoder interface {
	PostalCode(ctx context.Context, latitude, longitude float64) (string, error)
}

// RateQuote raw answer of the rate service. Rate is a percentage (7.25 = 7.25%).
type RateQuote struct {
	City        string
	State       string
	RatePercent decimal.Decimal
}

// RateService looks up the combined sales tax rate of a postal code.
type RateService interface {
	RateByPostalCode(ctx context.Context, postalCode string) (*RateQuote, error)
}
