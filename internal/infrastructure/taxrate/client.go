// Package taxrate is the HTTP adapter of the sales-tax-by-postal-code service.
package taxrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/smartcart-api/internal/application/tax"
)

var _ tax.RateService = (*Client)(nil)

const salesTaxPath = "/v1/salestax"

var (
	// ErrUnexpectedStatus the service answered with a non-200 status.
	ErrUnexpectedStatus = errors.New("taxrate: unexpected status")
	// ErrMalformedPayload City, State or TaxRate missing or of the wrong type.
	ErrMalformedPayload = errors.New("taxrate: malformed payload")
)

// Client calls GET {base}/v1/salestax?zip_code=... and caches quotes per postal code.
// Concurrent lookups of the same code share a single request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	group singleflight.Group
	cache *expirable.LRU[string, tax.RateQuote] // nil when caching is off
}

// cacheSize bounds the number of postal codes kept in memory.
const cacheSize = 4096

// NewClient builds the adapter. ttl <= 0 disables caching.
func NewClient(baseURL, apiKey string, timeout, ttl time.Duration) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	if ttl > 0 {
		c.cache = expirable.NewLRU[string, tax.RateQuote](cacheSize, nil, ttl)
	}
	return c
}

// RateByPostalCode returns the quote for postalCode. TaxRate in the payload is a percentage.
func (c *Client) RateByPostalCode(ctx context.Context, postalCode string) (*tax.RateQuote, error) {
	if q, ok := c.cached(postalCode); ok {
		return &q, nil
	}

	// the shared request must not die with the first caller's context
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(postalCode, func() (interface{}, error) {
		q, err := c.fetch(fetchCtx, postalCode)
		if err != nil {
			return nil, err
		}
		c.store(postalCode, *q)
		return q, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		q := *res.Val.(*tax.RateQuote)
		return &q, nil
	}
}

func (c *Client) fetch(ctx context.Context, postalCode string) (*tax.RateQuote, error) {
	u := c.baseURL + salesTaxPath + "?" + url.Values{"zip_code": {postalCode}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("taxrate: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("taxrate: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("taxrate: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return decodeQuote(body)
}

// decodeQuote accepts an object or an array whose first element is the object.
func decodeQuote(body []byte) (*tax.RateQuote, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if list, ok := raw.([]interface{}); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: empty result", ErrMalformedPayload)
		}
		raw = list[0]
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}

	city, ok := obj["City"].(string)
	if !ok || strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("%w: City", ErrMalformedPayload)
	}
	state, ok := obj["State"].(string)
	if !ok || strings.TrimSpace(state) == "" {
		return nil, fmt.Errorf("%w: State", ErrMalformedPayload)
	}
	num, ok := obj["TaxRate"].(json.Number)
	if !ok {
		return nil, fmt.Errorf("%w: TaxRate", ErrMalformedPayload)
	}
	rate, err := decimal.NewFromString(num.String())
	if err != nil {
		return nil, fmt.Errorf("%w: TaxRate %q", ErrMalformedPayload, num.String())
	}

	return &tax.RateQuote{
		City:        strings.TrimSpace(city),
		State:       strings.TrimSpace(state),
		RatePercent: rate,
	}, nil
}

func (c *Client) cached(postalCode string) (tax.RateQuote, bool) {
	if c.cache == nil {
		return tax.RateQuote{}, false
	}
	return c.cache.Get(postalCode)
}

func (c *Client) store(postalCode string, q tax.RateQuote) {
	if c.cache == nil {
		return
	}
	c.cache.Add(postalCode, q)
}
