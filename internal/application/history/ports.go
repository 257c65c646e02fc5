package history

import (
	"context"

	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

// RecordPDFGenerator renders the printable summary of a record.
type RecordPDFGenerator interface {
	GenerateRecordPDF(ctx context.Context, rec *entity.ShoppingRecord) ([]byte, error)
}
