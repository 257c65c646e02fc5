// Package geocode reverse-geocodes coordinates through a Nominatim-compatible HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/smartcart-api/internal/application/tax"
)

var _ tax.Geocoder = (*NominatimClient)(nil)

// ErrNoPostalCode the coordinate resolved to a place without a postal code.
var ErrNoPostalCode = errors.New("geocode: no postal code")

var zipPlus4 = regexp.MustCompile(`^(\d{5})-\d{4}$`)

// NominatimClient calls GET {base}/reverse?format=jsonv2&lat=..&lon=..
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimClient builds the adapter. Nominatim requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// PostalCode returns the postal code at the coordinate; ZIP+4 codes are cut to five digits.
func (c *NominatimClient) PostalCode(ctx context.Context, latitude, longitude float64) (string, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return "", fmt.Errorf("geocode: coordinate (%f, %f) out of range", latitude, longitude)
	}
	q := url.Values{
		"format": {"jsonv2"},
		"lat":    {strconv.FormatFloat(latitude, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(longitude, 'f', 6, 64)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var out reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("geocode: decode: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoPostalCode, out.Error)
	}
	code := strings.TrimSpace(out.Address.Postcode)
	if code == "" {
		return "", ErrNoPostalCode
	}
	if m := zipPlus4.FindStringSubmatch(code); m != nil {
		code = m[1]
	}
	return code, nil
}
