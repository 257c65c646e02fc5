package dto

import (
	"time"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// ShoppingRecordDTO the persisted record document shape.
type ShoppingRecordDTO struct {
	ID             string          `json:"id"`
	Store          string          `json:"store"`
	Date           time.Time       `json:"date"`
	Items          []RecordItemDTO `json:"items"`
	Subtotal       Amount          `json:"subtotal"`
	SalesTax       Amount          `json:"salesTax"`
	EstimatedTotal Amount          `json:"estimatedTotal"`
}

// RecordItemDTO price is the unit price.
type RecordItemDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    Amount `json:"price"`
}

// RecordListDTO page of records, newest first.
type RecordListDTO struct {
	Records []ShoppingRecordDTO `json:"records"`
	Page    PageResponse        `json:"page"`
}

// ToShoppingRecordDTO maps an entity to its document shape.
func ToShoppingRecordDTO(rec *entity.ShoppingRecord) ShoppingRecordDTO {
	items := make([]RecordItemDTO, len(rec.Items))
	for i, it := range rec.Items {
		items[i] = RecordItemDTO{Name: it.Name, Quantity: it.Quantity, Price: NewAmount(it.Price)}
	}
	return ShoppingRecordDTO{
		ID:             rec.ID,
		Store:          rec.Store,
		Date:           rec.Date,
		Items:          items,
		Subtotal:       NewAmount(rec.Subtotal),
		SalesTax:       NewAmount(rec.SalesTax),
		EstimatedTotal: NewAmount(rec.EstimatedTotal),
	}
}

// ToEntity maps the document back. ShopperID is not part of the document.
func (d ShoppingRecordDTO) ToEntity() *entity.ShoppingRecord {
	items := make([]entity.RecordItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = entity.RecordItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price.Decimal()}
	}
	return &entity.ShoppingRecord{
		ID:             d.ID,
		Store:          d.Store,
		Date:           d.Date,
		Items:          items,
		Subtotal:       d.Subtotal.Decimal(),
		SalesTax:       d.SalesTax.Decimal(),
		EstimatedTotal: d.EstimatedTotal.Decimal(),
	}
}
