package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcart-api/internal/application/history"
	"github.com/jhoicas/smartcart-api/internal/application/shopping"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
	apphttp "github.com/jhoicas/smartcart-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/smartcart-api/pkg/jwt"
	"github.com/jhoicas/smartcart-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testShopperID = "00000000-0000-0000-0000-000000000001"
	otherShopper  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "smartcart-test"
	testExpMin    = 60
)

// memStore in-memory records and plans, also acting as the transaction runner.
type memStore struct {
	mu      sync.Mutex
	records []*entity.ShoppingRecord
	plans   []*entity.TripPlan
}

func (m *memStore) Run(_ context.Context, fn func(repository.ShoppingRecordRepository, repository.TripPlanRepository) error) error {
	return fn(m, planStore{m})
}

func (m *memStore) Create(_ context.Context, rec *entity.ShoppingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.ShoppingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByShopper(_ context.Context, shopperID string, limit, offset int) ([]*entity.ShoppingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ShoppingRecord
	for _, r := range m.records {
		if r.ShopperID == shopperID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListSince(_ context.Context, shopperID string, since time.Time) ([]*entity.ShoppingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ShoppingRecord
	for _, r := range m.records {
		if r.ShopperID == shopperID && !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

type planStore struct{ m *memStore }

func (p planStore) Create(_ context.Context, plan *entity.TripPlan) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.m.plans = append(p.m.plans, plan)
	return nil
}

func (p planStore) LatestByShopper(_ context.Context, shopperID string) (*entity.TripPlan, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	for i := len(p.m.plans) - 1; i >= 0; i-- {
		if p.m.plans[i].ShopperID == shopperID {
			return p.m.plans[i], nil
		}
	}
	return nil, nil
}

type fixedResolver struct {
	res *entity.TaxLookupResult
	err error
}

func (f fixedResolver) Resolve(context.Context, float64, float64) (*entity.TaxLookupResult, error) {
	return f.res, f.err
}

type nopPublisher struct{}

func (nopPublisher) PublishRecordCreated(context.Context, string, *entity.ShoppingRecord) error {
	return nil
}

type stubPDF struct{}

func (stubPDF) GenerateRecordPDF(context.Context, *entity.ShoppingRecord) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

type testServer struct {
	app      *fiber.App
	store    *memStore
	shopping *shopping.UseCase
}

func newTestServer(t *testing.T, resolver fixedResolver) *testServer {
	t.Helper()
	store := &memStore{}
	shoppingUC := shopping.NewUseCase(store, planStore{store}, resolver, nopPublisher{}, time.Second, logger.Nop().Zerolog())
	t.Cleanup(shoppingUC.Close)
	historyUC := history.NewUseCase(store, stubPDF{}, time.Sunday, logger.Nop().Zerolog())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ShoppingUC: shoppingUC,
		HistoryUC:  historyUC,
		JWTSecret:  testJWTSecret,
	})
	return &testServer{app: app, store: store, shopping: shoppingUC}
}

func bearer(t *testing.T, shopperID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, shopperID, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// do sends the request as shopper (no auth header when shopper is empty) and returns status and body.
func (s *testServer) do(t *testing.T, method, path, shopperID string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if shopperID != "" {
		req.Header.Set("Authorization", bearer(t, shopperID))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}


func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
