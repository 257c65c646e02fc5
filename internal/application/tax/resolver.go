// Package tax resolves the sales tax rate for the shopper's location:
// coordinate → postal code → rate lookup.
package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/pkg/money"
)

var one = decimal.NewFromInt(1)

// Resolver runs the geocode-then-lookup pipeline. It never retries; each failure is
// reported as domain.ErrLocationUnresolved or domain.ErrRateLookupFailed.
type Resolver struct {
	geocoder Geocoder
	rates    RateService
	log      zerolog.Logger
}

// NewResolver builds the resolver.
func NewResolver(geocoder Geocoder, rates RateService, log zerolog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, rates: rates, log: log}
}

// Resolve returns the locality label and the rate as a fraction in [0,1).
func (r *Resolver) Resolve(ctx context.Context, latitude, longitude float64) (*entity.TaxLookupResult, error) {
	code, err := r.geocoder.PostalCode(ctx, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("tax: geocode (%.5f, %.5f): %w: %w", latitude, longitude, domain.ErrLocationUnresolved, err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("tax: no postal code at (%.5f, %.5f): %w", latitude, longitude, domain.ErrLocationUnresolved)
	}

	quote, err := r.rates.RateByPostalCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("tax: rate for %s: %w: %w", code, domain.ErrRateLookupFailed, err)
	}
	if quote == nil || quote.City == "" || quote.State == "" {
		return nil, fmt.Errorf("tax: incomplete quote for %s: %w", code, domain.ErrRateLookupFailed)
	}

	rate := money.PercentToFraction(quote.RatePercent)
	if rate.IsNegative() || !rate.LessThan(one) {
		return nil, fmt.Errorf("tax: rate %s%% for %s out of range: %w", quote.RatePercent, code, domain.ErrRateLookupFailed)
	}

	r.log.Debug().
		Str("postal_code", code).
		Str("rate", rate.String()).
		Msg("tax rate resolved")

	return &entity.TaxLookupResult{
		Locality: quote.City + ", " + quote.State,
		Rate:     rate,
	}, nil
}
