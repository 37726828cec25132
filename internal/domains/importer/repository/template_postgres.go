package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type templatePostgresRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templatePostgresRepository{pool: pool}
}

const templateColumns = `
    id, tenant_id, name, mapping, expected_headers, fingerprint,
    usage_count, last_used_at, created_at, updated_at
`

func scanTemplate(row pgx.Row) (*model.ImportTemplate, error) {
	var t model.ImportTemplate
	var mappingJSON []byte

	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.Name,
		&mappingJSON,
		pq.Array(&t.ExpectedHeaders),
		&t.Fingerprint,
		&t.UsageCount,
		&t.LastUsedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(mappingJSON, &t.Mapping); err != nil {
		return nil, fmt.Errorf("failed to decode template mapping: %w", err)
	}
	return &t, nil
}

func (r *templatePostgresRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM import_templates WHERE tenant_id = $1 AND id = $2`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get template by id: %w", err)
	}
	return tpl, nil
}

func (r *templatePostgresRepository) GetByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*model.ImportTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM import_templates WHERE tenant_id = $1 AND fingerprint = $2`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, tenantID, fingerprint))
	if err != nil {
		return nil, fmt.Errorf("failed to get template by fingerprint: %w", err)
	}
	return tpl, nil
}

func (r *templatePostgresRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*model.ImportTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM import_templates WHERE tenant_id = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.ImportTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return templates, nil
}

func (r *templatePostgresRepository) Create(ctx context.Context, tpl *model.ImportTemplate) (*model.ImportTemplate, error) {
	query := `
    INSERT INTO import_templates (
      id, tenant_id, name, mapping, expected_headers, fingerprint
    )
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING usage_count, created_at, updated_at
  `

	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	if tpl.Fingerprint == "" {
		tpl.Fingerprint = model.HeaderFingerprint(tpl.ExpectedHeaders)
	}

	mappingJSON, err := json.Marshal(tpl.Mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template mapping: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		tpl.ID,
		tpl.TenantID,
		tpl.Name,
		mappingJSON,
		pq.Array(tpl.ExpectedHeaders),
		tpl.Fingerprint,
	).Scan(&tpl.UsageCount, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

func (r *templatePostgresRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM import_templates WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template not found")
	}
	return nil
}

func (r *templatePostgresRepository) IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
    UPDATE import_templates
    SET usage_count = usage_count + 1, last_used_at = NOW(), updated_at = NOW()
    WHERE tenant_id = $1 AND id = $2
  `

	if _, err := r.pool.Exec(ctx, query, tenantID, id); err != nil {
		return fmt.Errorf("failed to increment template usage: %w", err)
	}
	return nil
}
