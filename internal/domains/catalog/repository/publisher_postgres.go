package repository

import (
	"context"
	"errors"
	"fmt"

	"bookquote-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type publisherPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPublisherRepository(pool *pgxpool.Pool) PublisherRepository {
	return &publisherPostgresRepository{pool: pool}
}

func (r *publisherPostgresRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Publisher, error) {
	query := `
    SELECT id, tenant_id, name, created_at, updated_at
    FROM publishers
    WHERE tenant_id = $1 AND id = $2
  `

	var pub model.Publisher
	err := r.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&pub.ID, &pub.TenantID, &pub.Name, &pub.CreatedAt, &pub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publisher by id: %w", err)
	}
	return &pub, nil
}

// GetByName expects the caller to have normalized the name already
// (model.NormalizePublisherName); names are stored in that form.
func (r *publisherPostgresRepository) GetByName(ctx context.Context, tenantID uuid.UUID, normalizedName string) (*model.Publisher, error) {
	query := `
    SELECT id, tenant_id, name, created_at, updated_at
    FROM publishers
    WHERE tenant_id = $1 AND name = $2
  `

	var pub model.Publisher
	err := r.pool.QueryRow(ctx, query, tenantID, normalizedName).Scan(
		&pub.ID, &pub.TenantID, &pub.Name, &pub.CreatedAt, &pub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publisher by name: %w", err)
	}
	return &pub, nil
}

func (r *publisherPostgresRepository) Create(ctx context.Context, pub *model.Publisher) (*model.Publisher, error) {
	query := `
    INSERT INTO publishers (id, tenant_id, name)
    VALUES ($1, $2, $3)
    RETURNING created_at, updated_at
  `

	if pub.ID == uuid.Nil {
		pub.ID = uuid.New()
	}
	pub.Name = model.NormalizePublisherName(pub.Name)

	err := r.pool.QueryRow(ctx, query, pub.ID, pub.TenantID, pub.Name).
		Scan(&pub.CreatedAt, &pub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrPublisherExists
		}
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}
	return pub, nil
}

// isUniqueViolation reports a postgres 23505 error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
