package shopping_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/application/shopping"
	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/pkg/logger"
)

const shopper = "shopper-1"

type fixture struct {
	uc        *shopping.UseCase
	records   *memRecords
	plans     *memPlans
	publisher *fakePublisher
}

func newFixture(t *testing.T, resolver fixedResolver) *fixture {
	t.Helper()
	f := &fixture{records: &memRecords{}, plans: &memPlans{}, publisher: &fakePublisher{}}
	f.uc = shopping.NewUseCase(
		fakeTx{records: f.records, plans: f.plans},
		f.plans,
		resolver,
		f.publisher,
		time.Second,
		logger.Nop().Zerolog(),
	)
	t.Cleanup(f.uc.Close)
	return f
}

func amount(s string) *dto.Amount {
	a := dto.NewAmount(dec(s))
	return &a
}

func TestStartTrip_SavesPlanAndRejectsSecondTrip(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	ctx := context.Background()

	view, err := f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{
		Store:       "Publix",
		Budget:      amount("10.00"),
		GroceryList: []string{" milk ", "", "eggs"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Publix", view.Store)
	assert.Equal(t, []string{"milk", "eggs"}, view.GroceryList)
	assert.Equal(t, "$10.00", view.Display.Budget)
	assert.Equal(t, "unknown", view.Tax.State)

	require.Len(t, f.plans.plans, 1)
	assert.Equal(t, shopper, f.plans.plans[0].ShopperID)

	_, err = f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "ALDI"})
	assert.ErrorIs(t, err, domain.ErrTripInProgress)

	last, err := f.uc.LastPlan(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, "Publix", last.Store)
	require.NotNil(t, last.Budget)
	assert.True(t, last.Budget.Decimal().Equal(dec("10")))
}

func TestStartTrip_InvalidInput(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	ctx := context.Background()

	_, err := f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "ALDI", Budget: amount("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Current(shopper)
	assert.ErrorIs(t, err, domain.ErrNoActiveTrip)
}

func TestLastPlan_NoneSaved(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.LastPlan(context.Background(), shopper)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCommands_WithoutTrip(t *testing.T) {
	f := newFixture(t, fixedResolver{})

	_, err := f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("1"))})
	assert.ErrorIs(t, err, domain.ErrNoActiveTrip)
	_, err = f.uc.Finish(context.Background(), shopper)
	assert.ErrorIs(t, err, domain.ErrNoActiveTrip)
	assert.ErrorIs(t, f.uc.Abandon(shopper), domain.ErrNoActiveTrip)
}

func TestAddItem_BudgetAndTotals(t *testing.T) {
	f := newFixture(t, fixedResolver{res: &entity.TaxLookupResult{Locality: "Tampa, FL", Rate: dec("0.07")}})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "Publix", Budget: amount("10.00")})
	require.NoError(t, err)

	_, err = f.uc.UpdateLocation(shopper, dto.LocationRequest{Latitude: 27.95, Longitude: -82.46})
	require.NoError(t, err)
	f.uc.WaitTax(shopper)

	view, err := f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Steak", Price: dto.NewAmount(dec("9.50"))})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.True(t, view.Subtotal.Decimal().Equal(dec("9.50")))
	assert.True(t, view.SalesTax.Decimal().Equal(dec("0.67")))
	assert.True(t, view.EstimatedTotal.Decimal().Equal(dec("10.17")))
	assert.True(t, view.BudgetExceeded)
	assert.True(t, view.Overrun.Decimal().Equal(dec("0.17")))
	assert.Equal(t, "resolved", view.Tax.State)
	assert.True(t, view.Tax.RateKnown)
	assert.Equal(t, "Tampa, FL", view.Tax.Locality)
	assert.Equal(t, "$10.17", view.Display.EstimatedTotal)
}

func TestAddItem_InvalidLeavesCartUnchanged(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "ALDI"})
	require.NoError(t, err)

	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("-1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("1")), Quantity: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	view, err := f.uc.Current(shopper)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestUpdateLocation_FailureKeepsZeroRate(t *testing.T) {
	f := newFixture(t, fixedResolver{err: domain.ErrLocationUnresolved})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "ALDI"})
	require.NoError(t, err)

	_, err = f.uc.UpdateLocation(shopper, dto.LocationRequest{Latitude: 200})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	view, err := f.uc.UpdateLocation(shopper, dto.LocationRequest{Latitude: 10, Longitude: 10})
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Tax.State)
	f.uc.WaitTax(shopper)

	view, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Bread", Price: dto.NewAmount(dec("2.00"))})
	require.NoError(t, err)
	assert.Equal(t, "failed", view.Tax.State)
	assert.False(t, view.Tax.RateKnown)
	assert.NotEmpty(t, view.Tax.Error)
	assert.True(t, view.SalesTax.Decimal().IsZero())
	assert.True(t, view.EstimatedTotal.Decimal().Equal(dec("2")))
}

func TestScan_SingleAndAll(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "Costco"})
	require.NoError(t, err)

	view, err := f.uc.Scan(shopper, dto.ScanRequest{Lines: []string{"$3.50", "Milk 2%"}})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Milk 2%", view.Items[0].Name)

	view, err = f.uc.Scan(shopper, dto.ScanRequest{All: true, Lines: []string{"$1.00", "Eggs", "$2.25", "Bread"}})
	require.NoError(t, err)
	require.Len(t, view.Items, 3)
	assert.Equal(t, "Eggs", view.Items[1].Name)
	assert.Equal(t, "Bread", view.Items[2].Name)
	assert.True(t, view.Subtotal.Decimal().Equal(dec("6.75")))

	_, err = f.uc.Scan(shopper, dto.ScanRequest{Lines: []string{"no numbers here"}})
	assert.ErrorIs(t, err, domain.ErrParseMiss)
	_, err = f.uc.Scan(shopper, dto.ScanRequest{All: true, Lines: []string{"nothing"}})
	assert.ErrorIs(t, err, domain.ErrParseMiss)

	view, err = f.uc.Current(shopper)
	require.NoError(t, err)
	assert.Len(t, view.Items, 3)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "Walmart"})
	require.NoError(t, err)
	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "A", Price: dto.NewAmount(dec("1"))})
	require.NoError(t, err)
	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "B", Price: dto.NewAmount(dec("2"))})
	require.NoError(t, err)

	_, err = f.uc.RemoveItem(shopper, 2)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	view, err := f.uc.RemoveItem(shopper, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "B", view.Items[0].Name)
	assert.Equal(t, 0, view.Items[0].Index)
}

func TestFinish_PersistsPublishesAndClosesTrip(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	ctx := context.Background()
	_, err := f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "Publix"})
	require.NoError(t, err)

	_, err = f.uc.Finish(ctx, shopper)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	_, err = f.uc.Current(shopper)
	require.NoError(t, err, "empty finish keeps the trip open")

	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("3.50")), Quantity: 2})
	require.NoError(t, err)

	rec, err := f.uc.Finish(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, "Publix", rec.Store)
	assert.True(t, rec.Subtotal.Decimal().Equal(dec("7")))
	require.Len(t, rec.Items, 1)
	assert.Equal(t, 2, rec.Items[0].Quantity)

	require.Len(t, f.records.records, 1)
	assert.Equal(t, shopper, f.records.records[0].ShopperID)
	assert.Equal(t, []published{{shopperID: shopper, recordID: rec.ID}}, f.publisher.sent)

	_, err = f.uc.Current(shopper)
	assert.ErrorIs(t, err, domain.ErrNoActiveTrip)

	_, err = f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "ALDI"})
	assert.NoError(t, err)
}

func TestFinish_SaveFailureKeepsTrip(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	ctx := context.Background()
	_, err := f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "Publix"})
	require.NoError(t, err)
	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("3.50"))})
	require.NoError(t, err)

	f.records.failErr = errors.New("db down")
	_, err = f.uc.Finish(ctx, shopper)
	require.Error(t, err)
	assert.Empty(t, f.publisher.sent)

	view, err := f.uc.Current(shopper)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestFinish_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	f.publisher.err = errors.New("broker unreachable")
	ctx := context.Background()
	_, err := f.uc.StartTrip(ctx, shopper, dto.StartTripRequest{Store: "Publix"})
	require.NoError(t, err)
	_, err = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Milk", Price: dto.NewAmount(dec("3.50"))})
	require.NoError(t, err)

	_, err = f.uc.Finish(ctx, shopper)
	require.NoError(t, err)
	assert.Len(t, f.records.records, 1)
}

func TestAbandon(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "Publix"})
	require.NoError(t, err)

	require.NoError(t, f.uc.Abandon(shopper))
	_, err = f.uc.Current(shopper)
	assert.ErrorIs(t, err, domain.ErrNoActiveTrip)
	assert.Empty(t, f.records.records)
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	f := newFixture(t, fixedResolver{})
	_, err := f.uc.StartTrip(context.Background(), shopper, dto.StartTripRequest{Store: "Publix"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.uc.AddItem(shopper, dto.AddItemRequest{Name: "Gum", Price: dto.NewAmount(dec("1.00"))})
		}()
	}
	wg.Wait()

	view, err := f.uc.Current(shopper)
	require.NoError(t, err)
	assert.Len(t, view.Items, 50)
	assert.True(t, view.Subtotal.Decimal().Equal(dec("50")))
}
