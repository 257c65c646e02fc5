package dto

import "time"

// StartTripRequest body of POST /api/trips.
type StartTripRequest struct {
	Store       string   `json:"store"`
	Budget      *Amount  `json:"budget,omitempty"`
	GroceryList []string `json:"groceryList"`
}

// TripPlanDTO a saved trip setup.
type TripPlanDTO struct {
	ID          string    `json:"id"`
	Store       string    `json:"store"`
	Budget      *Amount   `json:"budget,omitempty"`
	GroceryList []string  `json:"groceryList"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AddItemRequest manual entry. Quantity defaults to 1.
type AddItemRequest struct {
	Name     string `json:"name"`
	Price    Amount `json:"price"`
	Quantity int    `json:"quantity"`
}

// ScanRequest lines recognized by the OCR capture. All adds every pair found instead of the first.
type ScanRequest struct {
	Lines []string `json:"lines"`
	All   bool     `json:"all"`
}

// LocationRequest shopper position used to resolve the sales tax rate.
type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CartItemDTO a line of the cart view.
type CartItemDTO struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	UnitPrice Amount `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Amount    Amount `json:"amount"`
}

// TaxStatusDTO what the UI shows about the tax rate.
type TaxStatusDTO struct {
	State     string `json:"state"`
	Locality  string `json:"locality,omitempty"`
	Rate      Amount `json:"rate"`
	RateKnown bool   `json:"rateKnown"`
	Error     string `json:"error,omitempty"`
}

// CartView read-only projection of the active trip.
type CartView struct {
	Store          string        `json:"store"`
	GroceryList    []string      `json:"groceryList"`
	Items          []CartItemDTO `json:"items"`
	Subtotal       Amount        `json:"subtotal"`
	SalesTax       Amount        `json:"salesTax"`
	EstimatedTotal Amount        `json:"estimatedTotal"`
	Budget         *Amount       `json:"budget,omitempty"`
	BudgetExceeded bool          `json:"budgetExceeded"`
	Overrun        Amount        `json:"overrun"`
	Tax            TaxStatusDTO  `json:"tax"`
	Display        CartDisplay   `json:"display"`
}

// CartDisplay preformatted currency strings.
type CartDisplay struct {
	Subtotal       string `json:"subtotal"`
	SalesTax       string `json:"salesTax"`
	EstimatedTotal string `json:"estimatedTotal"`
	Budget         string `json:"budget"`
}

// StoreOptionsDTO stores offered on trip setup.
type StoreOptionsDTO struct {
	Stores []string `json:"stores"`
}
