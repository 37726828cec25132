package repository

import (
	"context"
	"errors"
	"fmt"

	"bookquote-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type pricingPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPricingRepository(pool *pgxpool.Pool) PricingRepository {
	return &pricingPostgresRepository{pool: pool}
}

const pricingColumns = `
    id, tenant_id, book_id, source, vendor_id, rate,
    COALESCE(currency, '') AS currency,
    discount, stock, binding_type, last_updated, created_at
`

func scanPricing(row pgx.Row) (*model.PricingRecord, error) {
	var p model.PricingRecord
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.BookID,
		&p.Source,
		&p.VendorID,
		&p.Rate,
		&p.Currency,
		&p.Discount,
		&p.Stock,
		&p.BindingType,
		&p.LastUpdated,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *pricingPostgresRepository) GetByBookAndSource(ctx context.Context, tenantID, bookID uuid.UUID, source string) (*model.PricingRecord, error) {
	query := `SELECT ` + pricingColumns + `
    FROM pricing_records
    WHERE tenant_id = $1 AND book_id = $2 AND source = $3`

	rec, err := scanPricing(r.pool.QueryRow(ctx, query, tenantID, bookID, source))
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing by book and source: %w", err)
	}
	return rec, nil
}

func (r *pricingPostgresRepository) ListByBook(ctx context.Context, tenantID, bookID uuid.UUID) ([]*model.PricingRecord, error) {
	query := `SELECT ` + pricingColumns + `
    FROM pricing_records
    WHERE tenant_id = $1 AND book_id = $2
    ORDER BY source`

	rows, err := r.pool.Query(ctx, query, tenantID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing records: %w", err)
	}
	defer rows.Close()

	var records []*model.PricingRecord
	for rows.Next() {
		rec, err := scanPricing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing records: %w", err)
	}
	return records, nil
}

func (r *pricingPostgresRepository) Create(ctx context.Context, rec *model.PricingRecord) (*model.PricingRecord, error) {
	query := `
    INSERT INTO pricing_records (
      id, tenant_id, book_id, source, vendor_id, rate, currency,
      discount, stock, binding_type, last_updated
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
    RETURNING last_updated, created_at
  `

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.TenantID,
		rec.BookID,
		rec.Source,
		rec.VendorID,
		rec.Rate,
		rec.Currency,
		rec.Discount,
		rec.Stock,
		rec.BindingType,
	).Scan(&rec.LastUpdated, &rec.CreatedAt)
	if err != nil {
		return nil, model.NewCreatePricingError(err)
	}
	return rec, nil
}

func (r *pricingPostgresRepository) UpdateRateDiscount(ctx context.Context, tenantID, id uuid.UUID, rate, discount decimal.Decimal) error {
	query := `
    UPDATE pricing_records
    SET rate = $3, discount = $4, last_updated = NOW()
    WHERE tenant_id = $1 AND id = $2
  `

	tag, err := r.pool.Exec(ctx, query, tenantID, id, rate, discount)
	if err != nil {
		return fmt.Errorf("failed to update pricing record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPricingNotFound
	}
	return nil
}
