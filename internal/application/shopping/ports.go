package shopping

import (
	"context"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
)

// TxRunner runs fn inside one transaction with repositories bound to it.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		records repository.ShoppingRecordRepository,
		plans repository.TripPlanRepository,
	) error) error
}

// RecordPublisher announces finished records to other services.
type RecordPublisher interface {
	PublishRecordCreated(ctx context.Context, shopperID string, rec *entity.ShoppingRecord) error
}
