// Package pdf renders the printable summary of a finished shopping trip.
//
// Page layout (US Letter):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SmartCart + store    │  record id + date           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Qty | Item | Unit price | Amount                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: Subtotal / Sales tax / Estimated total             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR with the record id + note                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/application/history"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/pkg/money"
)

var _ history.RecordPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Palette ───────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implements history.RecordPDFGenerator with Maroto v2.
type MarotoPDFGenerator struct {
	appName string
}

// NewMarotoPDFGenerator builds the generator. appName is printed in the header and metadata.
func NewMarotoPDFGenerator(appName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{appName: nonEmpty(appName, "SmartCart")}
}

// GenerateRecordPDF renders rec and returns the document bytes.
func (g *MarotoPDFGenerator) GenerateRecordPDF(_ context.Context, rec *entity.ShoppingRecord) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Shopping trip "+rec.ID, true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(rec))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(rec.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rec))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(rec))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ──────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(rec *entity.ShoppingRecord) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.appName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Store: "+nonEmpty(rec.Store, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SHOPPING TRIP SUMMARY", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(rec.ID), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+rec.Date.Format("Jan 2, 2006 3:04 PM"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Item", 6, align.Left),
		h("Unit price", 2, align.Right),
		h("Amount", 3, align.Right),
	)
}

func itemRows(items []entity.RecordItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		amount := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Format(it.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.Format(amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(rec *entity.ShoppingRecord) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: right, Top: 14,
		})
	}

	return row.New(24).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Sales tax:", 7),
			grand("Estimated total:", 2),
		),
		col.New(3).Add(
			value(money.Format(rec.Subtotal), 1),
			value(money.Format(rec.SalesTax), 7),
			grand(money.Format(rec.EstimatedTotal), 1),
		),
	)
}

func footerRow(rec *entity.ShoppingRecord) core.Row {
	return row.New(36).Add(
		col.New(3).Add(code.NewQr(rec.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Record "+rec.ID, props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
			text.New(
				"Estimated total includes the sales tax rate resolved for the shopper's "+
					"location at checkout time. Amounts in "+money.Currency.String()+".",
				props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray},
			),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID first block of a uuid, enough to tell receipts apart at a glance.
func shortID(id string) string {
	if len(id) > 8 {
		return "#" + id[:8]
	}
	return "#" + id
}
