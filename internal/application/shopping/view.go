package shopping

import (
	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/pkg/money"
)

// viewOf projects the trip. Caller holds t.mu.
func viewOf(t *trip) *dto.CartView {
	totals := t.cart.Totals()
	status := t.tracker.Status()

	items := t.cart.Items()
	out := &dto.CartView{
		Store:          t.plan.Store,
		GroceryList:    append([]string(nil), t.plan.GroceryList...),
		Items:          make([]dto.CartItemDTO, len(items)),
		Subtotal:       dto.NewAmount(totals.Subtotal),
		SalesTax:       dto.NewAmount(totals.SalesTax),
		EstimatedTotal: dto.NewAmount(totals.EstimatedTotal),
		BudgetExceeded: totals.BudgetExceeded,
		Overrun:        dto.NewAmount(totals.Overrun),
		Tax: dto.TaxStatusDTO{
			State:     string(status.State),
			Locality:  status.Locality,
			Rate:      dto.NewAmount(totals.TaxRate),
			RateKnown: status.RateKnown(),
		},
		Display: dto.CartDisplay{
			Subtotal:       money.Format(totals.Subtotal),
			SalesTax:       money.Format(totals.SalesTax),
			EstimatedTotal: money.Format(totals.EstimatedTotal),
		},
	}
	if status.Err != nil {
		out.Tax.Error = status.Err.Error()
	}
	for i, it := range items {
		out.Items[i] = dto.CartItemDTO{
			Index:     i,
			Name:      it.Name,
			UnitPrice: dto.NewAmount(it.UnitPrice),
			Quantity:  it.Quantity,
			Amount:    dto.NewAmount(it.Amount()),
		}
	}
	if b := t.cart.Budget(); b != nil {
		amt := dto.NewAmount(*b)
		out.Budget = &amt
		out.Display.Budget = money.Format(*b)
	}
	return out
}
