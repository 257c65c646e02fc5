package dto

import "time"

// SpendingSummaryDTO response of GET /api/spending/summary.
type SpendingSummaryDTO struct {
	AsOf      time.Time       `json:"asOf"`
	WeekStart string          `json:"weekStart"`
	Week      Amount          `json:"week"`
	Month     Amount          `json:"month"`
	Year      Amount          `json:"year"`
	Display   SpendingDisplay `json:"display"`
}

// SpendingDisplay preformatted totals.
type SpendingDisplay struct {
	Week  string `json:"week"`
	Month string `json:"month"`
	Year  string `json:"year"`
}
