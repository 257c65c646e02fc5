package http_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

func seed(t *testing.T, s *testServer, id, shopperID string, date time.Time, total string) {
	t.Helper()
	d := decimal.RequireFromString(total)
	require.NoError(t, s.store.Create(context.Background(), &entity.ShoppingRecord{
		ID: id, ShopperID: shopperID, Store: "Publix", Date: date,
		Items:    []entity.RecordItem{{Name: "Basket", Quantity: 1, Price: d}},
		Subtotal: d, SalesTax: decimal.Zero, EstimatedTotal: d,
	}))
}

func TestSpendingSummary(t *testing.T) {
	s := newTestServer(t, fixedResolver{})
	seed(t, s, "r1", testShopperID, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), "10.00")
	seed(t, s, "r2", testShopperID, time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC), "20.00")
	seed(t, s, "r3", testShopperID, time.Date(2024, 3, 11, 15, 0, 0, 0, time.UTC), "40.00")
	seed(t, s, "r4", otherShopper, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), "99.00")

	status, body := s.do(t, http.MethodGet, "/api/spending/summary?asOf=2026-03-11", testShopperID, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	sum := decode[dto.SpendingSummaryDTO](t, body)
	assert.True(t, sum.Week.Decimal().Equal(decimal.NewFromInt(10)))
	assert.True(t, sum.Month.Decimal().Equal(decimal.NewFromInt(10)))
	assert.True(t, sum.Year.Decimal().Equal(decimal.NewFromInt(30)))

	status, _ = s.do(t, http.MethodGet, "/api/spending/summary?asOf=yesterday", testShopperID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRecords_ListAndPDF(t *testing.T) {
	s := newTestServer(t, fixedResolver{})
	seed(t, s, "old", testShopperID, time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), "5")
	seed(t, s, "new", testShopperID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), "7")

	status, body := s.do(t, http.MethodGet, "/api/records?limit=10", testShopperID, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.RecordListDTO](t, body)
	require.Len(t, list.Records, 2)
	assert.Equal(t, "new", list.Records[0].ID)
	assert.Equal(t, 10, list.Page.Limit)

	status, body = s.do(t, http.MethodGet, "/api/records/new/pdf", testShopperID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "%PDF-1.7 stub", string(body))

	status, _ = s.do(t, http.MethodGet, "/api/records/new/pdf", otherShopper, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(t, http.MethodGet, "/api/records/missing", testShopperID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
