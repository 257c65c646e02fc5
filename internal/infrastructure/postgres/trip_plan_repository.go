package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
)

var _ repository.TripPlanRepository = (*TripPlanRepo)(nil)

// TripPlanRepo TripPlanRepository over PostgreSQL.
type TripPlanRepo struct {
	q Querier
}

// NewTripPlanRepository builds the adapter. Pass a pool or a tx.
func NewTripPlanRepository(q Querier) *TripPlanRepo {
	return &TripPlanRepo{q: q}
}

// Create stores the plan.
func (r *TripPlanRepo) Create(ctx context.Context, plan *entity.TripPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	list := plan.GroceryList
	if list == nil {
		list = []string{}
	}
	const query = `
		INSERT INTO trip_plans (id, shopper_id, store, budget, grocery_list, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		plan.ID, plan.ShopperID, plan.Store, nullDecimal(plan.Budget), list, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trip plan: %w", err)
	}
	return nil
}

// LatestByShopper returns the most recent plan of the shopper.
func (r *TripPlanRepo) LatestByShopper(ctx context.Context, shopperID string) (*entity.TripPlan, error) {
	const query = `
		SELECT id::text, shopper_id, store, budget, grocery_list, created_at
		FROM trip_plans
		WHERE shopper_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var plan entity.TripPlan
	var budget decimal.NullDecimal
	err := r.q.QueryRow(ctx, query, shopperID).Scan(
		&plan.ID, &plan.ShopperID, &plan.Store, &budget, &plan.GroceryList, &plan.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest trip plan: %w", err)
	}
	if budget.Valid {
		b := budget.Decimal
		plan.Budget = &b
	}
	return &plan, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
