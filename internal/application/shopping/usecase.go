// Package shopping runs the trip lifecycle: one active cart per shopper, fed by
// manual entry or scanned text, priced with the tax rate of the shopper's
// location and frozen into a ShoppingRecord on finish.
package shopping

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/application/tax"
	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/cart"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/receipt"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
)

// trip an active shopping session. mu serializes every command on the cart.
type trip struct {
	mu       sync.Mutex
	plan     entity.TripPlan
	cart     *cart.Session
	tracker  *tax.Tracker
	finished bool
}

// UseCase owns the active trips of every shopper.
type UseCase struct {
	txRunner   TxRunner
	planRepo   repository.TripPlanRepository
	resolver   tax.LocationResolver
	publisher  RecordPublisher
	taxTimeout time.Duration
	log        zerolog.Logger
	now        func() time.Time

	mu    sync.Mutex
	trips map[string]*trip
}

// NewUseCase builds the use case. taxTimeout bounds each tax resolution.
func NewUseCase(
	txRunner TxRunner,
	planRepo repository.TripPlanRepository,
	resolver tax.LocationResolver,
	publisher RecordPublisher,
	taxTimeout time.Duration,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		planRepo:   planRepo,
		resolver:   resolver,
		publisher:  publisher,
		taxTimeout: taxTimeout,
		log:        log,
		now:        time.Now,
		trips:      make(map[string]*trip),
	}
}

// StartTrip opens a cart for the shopper and saves the trip plan.
func (uc *UseCase) StartTrip(ctx context.Context, shopperID string, in dto.StartTripRequest) (*dto.CartView, error) {
	store := strings.TrimSpace(in.Store)
	if shopperID == "" || store == "" {
		return nil, domain.ErrInvalidInput
	}

	plan := entity.TripPlan{
		ID:          uuid.New().String(),
		ShopperID:   shopperID,
		Store:       store,
		GroceryList: cleanList(in.GroceryList),
		CreatedAt:   uc.now(),
	}
	opts := []cart.Option{}
	if in.Budget != nil {
		b := in.Budget.Decimal()
		plan.Budget = &b
		opts = append(opts, cart.WithBudget(b))
	}

	log := uc.log.With().Str("shopper_id", shopperID).Str("trip_id", plan.ID).Logger()
	opts = append(opts, cart.WithBudgetObserver(func(e cart.BudgetExceeded) {
		log.Info().
			Str("budget", e.Budget.String()).
			Str("estimated_total", e.EstimatedTotal.String()).
			Str("overrun", e.Overrun.String()).
			Msg("budget exceeded")
	}))

	session, err := cart.New(opts...)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	if _, ok := uc.trips[shopperID]; ok {
		uc.mu.Unlock()
		return nil, domain.ErrTripInProgress
	}
	t := &trip{
		plan:    plan,
		cart:    session,
		tracker: tax.NewTracker(uc.resolver, session, uc.taxTimeout, log),
	}
	uc.trips[shopperID] = t
	uc.mu.Unlock()

	err = uc.txRunner.Run(ctx, func(_ repository.ShoppingRecordRepository, plans repository.TripPlanRepository) error {
		return plans.Create(ctx, &plan)
	})
	if err != nil {
		uc.drop(shopperID, t)
		return nil, fmt.Errorf("shopping: save trip plan: %w", err)
	}

	log.Info().Str("store", store).Msg("trip started")
	t.mu.Lock()
	defer t.mu.Unlock()
	return viewOf(t), nil
}

// LastPlan returns the shopper's most recent trip setup, used to prefill the next one.
func (uc *UseCase) LastPlan(ctx context.Context, shopperID string) (*dto.TripPlanDTO, error) {
	plan, err := uc.planRepo.LatestByShopper(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("shopping: latest plan: %w", err)
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.TripPlanDTO{
		ID:          plan.ID,
		Store:       plan.Store,
		GroceryList: plan.GroceryList,
		CreatedAt:   plan.CreatedAt,
	}
	if plan.Budget != nil {
		b := dto.NewAmount(*plan.Budget)
		out.Budget = &b
	}
	return &out, nil
}

// Current returns the view of the shopper's active cart.
func (uc *UseCase) Current(shopperID string) (*dto.CartView, error) {
	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return viewOf(t), nil
}

// AddItem adds a manually entered item.
func (uc *UseCase) AddItem(shopperID string, in dto.AddItemRequest) (*dto.CartView, error) {
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	if _, err := t.cart.AddItem(in.Name, in.Price.Decimal(), qty); err != nil {
		return nil, err
	}
	return viewOf(t), nil
}

// Scan reads recognized text lines and adds the item found, or every item when in.All.
// Nothing recognizable fails with domain.ErrParseMiss and leaves the cart untouched.
func (uc *UseCase) Scan(shopperID string, in dto.ScanRequest) (*dto.CartView, error) {
	var items []receipt.Item
	if in.All {
		items = receipt.ParseAll(in.Lines)
		if len(items) == 0 {
			return nil, domain.ErrParseMiss
		}
	} else {
		it, err := receipt.Extract(in.Lines)
		if err != nil {
			return nil, err
		}
		items = []receipt.Item{it}
	}

	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	for _, it := range items {
		if _, err := t.cart.AddItem(it.Name, it.Price, 1); err != nil {
			return nil, err
		}
	}
	return viewOf(t), nil
}

// RemoveItem removes the item at index (as listed by the view).
func (uc *UseCase) RemoveItem(shopperID string, index int) (*dto.CartView, error) {
	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	if _, err := t.cart.RemoveItem(index); err != nil {
		return nil, err
	}
	return viewOf(t), nil
}

// UpdateLocation starts resolving the tax rate for the position. The result is
// applied asynchronously; a later update supersedes this one.
func (uc *UseCase) UpdateLocation(shopperID string, in dto.LocationRequest) (*dto.CartView, error) {
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	t.tracker.Update(in.Latitude, in.Longitude)
	return viewOf(t), nil
}

// Finish freezes the cart into a record, persists it and closes the trip.
// An empty cart fails with domain.ErrEmptyCart and the trip stays open.
func (uc *UseCase) Finish(ctx context.Context, shopperID string) (*dto.ShoppingRecordDTO, error) {
	t, err := uc.lock(shopperID)
	if err != nil {
		return nil, err
	}
	defer t.mu.Unlock()

	// ── 1. Snapshot ───────────────────────────────────────────────────────────
	rec, err := t.cart.Finish(t.plan.Store, uc.now())
	if err != nil {
		return nil, err
	}
	rec.ShopperID = shopperID

	// ── 2. Persist ────────────────────────────────────────────────────────────
	err = uc.txRunner.Run(ctx, func(records repository.ShoppingRecordRepository, _ repository.TripPlanRepository) error {
		return records.Create(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("shopping: save record: %w", err)
	}

	// ── 3. Close the trip ─────────────────────────────────────────────────────
	t.finished = true
	uc.drop(shopperID, t)
	t.tracker.Close()

	log := uc.log.With().Str("shopper_id", shopperID).Str("record_id", rec.ID).Logger()
	log.Info().Str("estimated_total", rec.EstimatedTotal.String()).Int("items", len(rec.Items)).Msg("trip finished")

	// ── 4. Announce ───────────────────────────────────────────────────────────
	if err := uc.publisher.PublishRecordCreated(ctx, shopperID, rec); err != nil {
		log.Warn().Err(err).Msg("record event not published")
	}

	out := dto.ToShoppingRecordDTO(rec)
	return &out, nil
}

// Abandon discards the active trip without saving a record.
func (uc *UseCase) Abandon(shopperID string) error {
	t, err := uc.lock(shopperID)
	if err != nil {
		return err
	}
	defer t.mu.Unlock()

	t.finished = true
	uc.drop(shopperID, t)
	t.tracker.Close()
	uc.log.Info().Str("shopper_id", shopperID).Str("trip_id", t.plan.ID).Msg("trip abandoned")
	return nil
}

// Close stops every in-flight tax resolution. Active carts are discarded.
func (uc *UseCase) Close() {
	uc.mu.Lock()
	trips := uc.trips
	uc.trips = make(map[string]*trip)
	uc.mu.Unlock()

	for _, t := range trips {
		t.tracker.Close()
	}
}

// WaitTax blocks until the shopper's tax resolution, if any, has ended.
func (uc *UseCase) WaitTax(shopperID string) {
	uc.mu.Lock()
	t, ok := uc.trips[shopperID]
	uc.mu.Unlock()
	if ok {
		t.tracker.Wait()
	}
}

// lock returns the shopper's trip with its mutex held.
func (uc *UseCase) lock(shopperID string) (*trip, error) {
	uc.mu.Lock()
	t, ok := uc.trips[shopperID]
	uc.mu.Unlock()
	if !ok {
		return nil, domain.ErrNoActiveTrip
	}
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return nil, domain.ErrNoActiveTrip
	}
	return t, nil
}

func (uc *UseCase) drop(shopperID string, t *trip) {
	uc.mu.Lock()
	if uc.trips[shopperID] == t {
		delete(uc.trips, shopperID)
	}
	uc.mu.Unlock()
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
