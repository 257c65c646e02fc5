// Package spending buckets finished shopping records into rolling totals.
package spending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// Totals sum of EstimatedTotal per bucket. Buckets overlap: a record of this
// week also counts for this month and this year when it falls in them.
type Totals struct {
	Week  decimal.Decimal
	Month decimal.Decimal
	Year  decimal.Decimal
}

// Aggregate sums records into the week, month and year of asOf.
// Dates are compared in asOf's location; weeks start on weekStart. Input order does not matter.
func Aggregate(records []*entity.ShoppingRecord, asOf time.Time, weekStart time.Weekday) Totals {
	totals := Totals{Week: decimal.Zero, Month: decimal.Zero, Year: decimal.Zero}
	loc := asOf.Location()
	thisWeek := StartOfWeek(asOf, weekStart)

	for _, r := range records {
		if r == nil {
			continue
		}
		d := r.Date.In(loc)
		if d.Year() != asOf.Year() {
			// only the week bucket can reach across a year boundary
			if StartOfWeek(d, weekStart).Equal(thisWeek) {
				totals.Week = totals.Week.Add(r.EstimatedTotal)
			}
			continue
		}
		totals.Year = totals.Year.Add(r.EstimatedTotal)
		if d.Month() == asOf.Month() {
			totals.Month = totals.Month.Add(r.EstimatedTotal)
		}
		if StartOfWeek(d, weekStart).Equal(thisWeek) {
			totals.Week = totals.Week.Add(r.EstimatedTotal)
		}
	}
	return totals
}

// StartOfWeek midnight of the first day of t's week, in t's location.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WindowStart earliest instant any bucket of asOf can include; used to bound record queries.
func WindowStart(asOf time.Time, weekStart time.Weekday) time.Time {
	week := StartOfWeek(asOf, weekStart)
	year := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	if week.Before(year) {
		return week
	}
	return year
}
