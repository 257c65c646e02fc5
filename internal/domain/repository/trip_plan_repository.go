package repository

import (
	"context"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// TripPlanRepository stores what the shopper set up before each trip.
type TripPlanRepository interface {
	Create(ctx context.Context, plan *entity.TripPlan) error
	// LatestByShopper returns nil, nil when the shopper has no plan yet.
	LatestByShopper(ctx context.Context, shopperID string) (*entity.TripPlan, error)
}
