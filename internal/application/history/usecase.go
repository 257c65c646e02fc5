// Package history serves the shopper's finished trips and their spending totals.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/smartcart-api/internal/application/dto"
	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
	"github.com/jhoicas/smartcart-api/internal/domain/spending"
	"github.com/jhoicas/smartcart-api/pkg/money"
)

// UseCase read side of shopping records.
type UseCase struct {
	recordRepo repository.ShoppingRecordRepository
	generator  RecordPDFGenerator
	weekStart  time.Weekday
	log        zerolog.Logger
}

// NewUseCase builds the use case. weekStart is the first day of a spending week.
func NewUseCase(recordRepo repository.ShoppingRecordRepository, generator RecordPDFGenerator, weekStart time.Weekday, log zerolog.Logger) *UseCase {
	return &UseCase{recordRepo: recordRepo, generator: generator, weekStart: weekStart, log: log}
}

// ListRecords returns the shopper's records, newest first.
func (uc *UseCase) ListRecords(ctx context.Context, shopperID string, page dto.PageRequest) (*dto.RecordListDTO, error) {
	page.DefaultPage()
	list, err := uc.recordRepo.ListByShopper(ctx, shopperID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("history: list records: %w", err)
	}
	out := &dto.RecordListDTO{
		Records: make([]dto.ShoppingRecordDTO, len(list)),
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for i, rec := range list {
		out.Records[i] = dto.ToShoppingRecordDTO(rec)
	}
	return out, nil
}

// GetRecord returns one record. Records of other shoppers are reported as not found.
func (uc *UseCase) GetRecord(ctx context.Context, shopperID, id string) (*dto.ShoppingRecordDTO, error) {
	rec, err := uc.owned(ctx, shopperID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToShoppingRecordDTO(rec)
	return &out, nil
}

// Summary totals of the week, month and year containing asOf.
func (uc *UseCase) Summary(ctx context.Context, shopperID string, asOf time.Time) (*dto.SpendingSummaryDTO, error) {
	since := spending.WindowStart(asOf, uc.weekStart)
	records, err := uc.recordRepo.ListSince(ctx, shopperID, since)
	if err != nil {
		return nil, fmt.Errorf("history: records since %s: %w", since.Format(time.DateOnly), err)
	}

	totals := spending.Aggregate(records, asOf, uc.weekStart)
	uc.log.Debug().Str("shopper_id", shopperID).Int("records", len(records)).Time("as_of", asOf).Msg("spending summary")

	return &dto.SpendingSummaryDTO{
		AsOf:      asOf,
		WeekStart: uc.weekStart.String(),
		Week:      dto.NewAmount(money.Round(totals.Week)),
		Month:     dto.NewAmount(money.Round(totals.Month)),
		Year:      dto.NewAmount(money.Round(totals.Year)),
		Display: dto.SpendingDisplay{
			Week:  money.Format(totals.Week),
			Month: money.Format(totals.Month),
			Year:  money.Format(totals.Year),
		},
	}, nil
}

// RecordPDF renders the printable summary of a record and suggests a file name.
func (uc *UseCase) RecordPDF(ctx context.Context, shopperID, id string) ([]byte, string, error) {
	rec, err := uc.owned(ctx, shopperID, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.generator.GenerateRecordPDF(ctx, rec)
	if err != nil {
		return nil, "", fmt.Errorf("history: render pdf: %w", err)
	}
	filename := fmt.Sprintf("smartcart-%s-%s.pdf", rec.Date.Format("20060102"), rec.ID)
	return b, filename, nil
}

func (uc *UseCase) owned(ctx context.Context, shopperID, id string) (*entity.ShoppingRecord, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	rec, err := uc.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("history: get record: %w", err)
	}
	if rec == nil || rec.ShopperID != shopperID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
