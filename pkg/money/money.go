// Package money holds the single currency rule of the service: amounts are
// kept in full precision and rounded half-up to the currency scale on read.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency is the only currency the engine handles.
var Currency = currency.USD

// Scale decimal places of Currency (2 for USD).
var Scale = currencyScale()

var printer = message.NewPrinter(language.AmericanEnglish)

func currencyScale() int32 {
	scale, _ := currency.Standard.Rounding(Currency)
	return int32(scale)
}

// Round rounds d half-up (away from zero) to the currency scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Format renders an amount for display, e.g. "$1,234.50".
func Format(d decimal.Decimal) string {
	f := Round(d).InexactFloat64()
	if f < 0 {
		return "-$" + printer.Sprint(number.Decimal(-f, number.Scale(int(Scale))))
	}
	return "$" + printer.Sprint(number.Decimal(f, number.Scale(int(Scale))))
}

// PercentToFraction converts a percentage such as 7.25 into 0.0725.
func PercentToFraction(p decimal.Decimal) decimal.Decimal {
	return p.Div(decimal.NewFromInt(100))
}
