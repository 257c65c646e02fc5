package repository

import (
	"context"
	"time"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// ShoppingRecordRepository persistence port for finished trips.
// Records are immutable: there is no update.
type ShoppingRecordRepository interface {
	// Create stores the record and its items. Wrap it in a transaction for atomicity.
	Create(ctx context.Context, rec *entity.ShoppingRecord) error
	// GetByID returns nil, nil when the record does not exist.
	GetByID(ctx context.Context, id string) (*entity.ShoppingRecord, error)
	// ListByShopper returns records newest first, with items.
	ListByShopper(ctx context.Context, shopperID string, limit, offset int) ([]*entity.ShoppingRecord, error)
	// ListSince returns records dated at or after since, without items (aggregation only).
	ListSince(ctx context.Context, shopperID string, since time.Time) ([]*entity.ShoppingRecord, error)
}
