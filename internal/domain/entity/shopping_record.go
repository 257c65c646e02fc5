package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingRecord the persisted, immutable result of a finished shopping trip.
// Subtotal, SalesTax and EstimatedTotal are stored at currency scale.
type ShoppingRecord struct {
	ID             string
	ShopperID      string
	Store          string
	Date           time.Time
	Items          []RecordItem
	Subtotal       decimal.Decimal
	SalesTax       decimal.Decimal
	EstimatedTotal decimal.Decimal
}

// RecordItem a line of a ShoppingRecord. Price is the unit price.
type RecordItem struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}
