package repository

import (
	"context"

	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
)

// TemplateRepository stores reusable import mappings per tenant.
// Lookups return (nil, nil) on no match.
type TemplateRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportTemplate, error)
	// GetByFingerprint finds the template saved for an exact header set.
	GetByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*model.ImportTemplate, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*model.ImportTemplate, error)
	Create(ctx context.Context, tpl *model.ImportTemplate) (*model.ImportTemplate, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// IncrementUsage bumps usage_count and last_used_at. Called exactly once
	// per import attempt that applied the template.
	IncrementUsage(ctx context.Context, tenantID, id uuid.UUID) error
}
