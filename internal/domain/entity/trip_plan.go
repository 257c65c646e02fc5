package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreOptions stores offered when a trip is set up. "Other" accepts any name.
var StoreOptions = []string{
	"ALDI", "Costco", "Publix", "The Fresh Market", "Walmart", "WholeFoods", "Winn-Dixie", "Other",
}

// TripPlan what the shopper set up before starting: store, optional budget and grocery list.
type TripPlan struct {
	ID          string
	ShopperID   string
	Store       string
	Budget      *decimal.Decimal
	GroceryList []string
	CreatedAt   time.Time
}
