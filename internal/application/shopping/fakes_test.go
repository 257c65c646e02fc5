package shopping_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
)

type memRecords struct {
	mu      sync.Mutex
	records []*entity.ShoppingRecord
	failErr error
}

func (m *memRecords) Create(_ context.Context, rec *entity.ShoppingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecords) GetByID(_ context.Context, id string) (*entity.ShoppingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRecords) ListByShopper(context.Context, string, int, int) ([]*entity.ShoppingRecord, error) {
	return nil, errors.New("not used")
}

func (m *memRecords) ListSince(context.Context, string, time.Time) ([]*entity.ShoppingRecord, error) {
	return nil, errors.New("not used")
}

type memPlans struct {
	mu    sync.Mutex
	plans []*entity.TripPlan
}

func (m *memPlans) Create(_ context.Context, plan *entity.TripPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, plan)
	return nil
}

func (m *memPlans) LatestByShopper(_ context.Context, shopperID string) (*entity.TripPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.plans) - 1; i >= 0; i-- {
		if m.plans[i].ShopperID == shopperID {
			return m.plans[i], nil
		}
	}
	return nil, nil
}

type fakeTx struct {
	records *memRecords
	plans   *memPlans
}

func (f fakeTx) Run(_ context.Context, fn func(repository.ShoppingRecordRepository, repository.TripPlanRepository) error) error {
	return fn(f.records, f.plans)
}

type published struct {
	shopperID string
	recordID  string
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakePublisher) PublishRecordCreated(_ context.Context, shopperID string, rec *entity.ShoppingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{shopperID: shopperID, recordID: rec.ID})
	return nil
}

type fixedResolver struct {
	res *entity.TaxLookupResult
	err error
}

func (f fixedResolver) Resolve(context.Context, float64, float64) (*entity.TaxLookupResult, error) {
	return f.res, f.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
