package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/smartcart-api/internal/domain"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
	"github.com/jhoicas/smartcart-api/internal/domain/repository"
)

var _ repository.ShoppingRecordRepository = (*ShoppingRecordRepo)(nil)

// ShoppingRecordRepo ShoppingRecordRepository over PostgreSQL (pool or tx).
type ShoppingRecordRepo struct {
	q Querier
}

// NewShoppingRecordRepository builds the adapter. Pass a pool or a tx.
func NewShoppingRecordRepository(q Querier) *ShoppingRecordRepo {
	return &ShoppingRecordRepo{q: q}
}

// Create inserts the header and its items in order.
func (r *ShoppingRecordRepo) Create(ctx context.Context, rec *entity.ShoppingRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	const header = `
		INSERT INTO shopping_records (id, shopper_id, store, date, subtotal, sales_tax, estimated_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, header,
		rec.ID, rec.ShopperID, rec.Store, rec.Date,
		rec.Subtotal, rec.SalesTax, rec.EstimatedTotal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("shopping record %s already exists: %w", rec.ID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert shopping record: %w", err)
	}

	const item = `
		INSERT INTO shopping_record_items (record_id, position, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`
	for i, it := range rec.Items {
		if _, err := r.q.Exec(ctx, item, rec.ID, i, it.Name, it.Quantity, it.Price); err != nil {
			return fmt.Errorf("insert shopping record item %d: %w", i, err)
		}
	}
	return nil
}

// GetByID loads a record with its items.
func (r *ShoppingRecordRepo) GetByID(ctx context.Context, id string) (*entity.ShoppingRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	const query = `
		SELECT id::text, shopper_id, store, date, subtotal, sales_tax, estimated_total
		FROM shopping_records WHERE id = $1`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shopping record: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.ShoppingRecord{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListByShopper returns the shopper's records newest first, with items.
func (r *ShoppingRecordRepo) ListByShopper(ctx context.Context, shopperID string, limit, offset int) ([]*entity.ShoppingRecord, error) {
	const query = `
		SELECT id::text, shopper_id, store, date, subtotal, sales_tax, estimated_total
		FROM shopping_records
		WHERE shopper_id = $1
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3`
	list, err := r.list(ctx, query, shopperID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListSince returns headers dated at or after since.
func (r *ShoppingRecordRepo) ListSince(ctx context.Context, shopperID string, since time.Time) ([]*entity.ShoppingRecord, error) {
	const query = `
		SELECT id::text, shopper_id, store, date, subtotal, sales_tax, estimated_total
		FROM shopping_records
		WHERE shopper_id = $1 AND date >= $2`
	return r.list(ctx, query, shopperID, since)
}

func (r *ShoppingRecordRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ShoppingRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shopping records: %w", err)
	}
	defer rows.Close()

	var list []*entity.ShoppingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// loadItems fills Items of every record with a single query.
func (r *ShoppingRecordRepo) loadItems(ctx context.Context, records []*entity.ShoppingRecord) error {
	if len(records) == 0 {
		return nil
	}
	byID := make(map[string]*entity.ShoppingRecord, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	const query = `
		SELECT record_id::text, name, quantity, price
		FROM shopping_record_items
		WHERE record_id = ANY($1::uuid[])
		ORDER BY record_id, position`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list shopping record items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var it entity.RecordItem
		if err := rows.Scan(&recordID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan shopping record item: %w", err)
		}
		if rec, ok := byID[recordID]; ok {
			rec.Items = append(rec.Items, it)
		}
	}
	return rows.Err()
}

func scanRecord(row pgx.Row) (*entity.ShoppingRecord, error) {
	var rec entity.ShoppingRecord
	if err := row.Scan(
		&rec.ID, &rec.ShopperID, &rec.Store, &rec.Date,
		&rec.Subtotal, &rec.SalesTax, &rec.EstimatedTotal,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
