// Package receipt extracts line items from text recognized on receipts and shelf tags.
package receipt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain"
)

// UnknownItemName is used when no name line follows the price.
const UnknownItemName = "Unknown Item"

// priceToken a whole whitespace-separated token: optional "$", digits, optionally exactly two decimals.
var priceToken = regexp.MustCompile(`^\$?\d+(\.\d{2})?$`)

// Item a (name, price) candidate read from recognized text.
type Item struct {
	Name  string
	Price decimal.Decimal
}

// Parse scans lines in order and returns the first price found, named after the line that follows it.
// It does not reconcile several prices; the first one wins.
func Parse(lines []string) (Item, bool) {
	item, _, ok := parseFrom(lines, 0)
	return item, ok
}

// Extract is Parse returning domain.ErrParseMiss when nothing is found.
func Extract(lines []string) (Item, error) {
	item, ok := Parse(lines)
	if !ok {
		return Item{}, domain.ErrParseMiss
	}
	return item, nil
}

// ParseAll applies the same heuristic repeatedly, resuming after the name line of each match.
func ParseAll(lines []string) []Item {
	var items []Item
	for start := 0; start < len(lines); {
		item, next, ok := parseFrom(lines, start)
		if !ok {
			break
		}
		items = append(items, item)
		start = next
	}
	return items
}

// parseFrom returns the first item at or after start and the index to resume from.
func parseFrom(lines []string, start int) (Item, int, bool) {
	for i := start; i < len(lines); i++ {
		price, ok := findPrice(lines[i])
		if !ok {
			continue
		}
		name := UnknownItemName
		next := i + 1
		if next < len(lines) {
			if n := strings.TrimSpace(lines[next]); n != "" {
				name = n
			}
			next++
		}
		return Item{Name: name, Price: price}, next, true
	}
	return Item{}, len(lines), false
}

// findPrice returns the first price token of line.
func findPrice(line string) (decimal.Decimal, bool) {
	for _, field := range strings.Fields(line) {
		if !priceToken.MatchString(field) {
			continue
		}
		price, err := parsePrice(field)
		if err != nil {
			continue
		}
		return price, true
	}
	return decimal.Decimal{}, false
}

func parsePrice(token string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(token, "$"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("receipt: parse price %q: %w", token, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("receipt: negative price %q", token)
	}
	return d, nil
}
