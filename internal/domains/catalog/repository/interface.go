package repository

import (
	"context"

	"bookquote-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lookups return (nil, nil) on no match; errors are reserved for real
// datastore failures. The import pipeline depends on that distinction.

// BookRepository is the catalog book store, always tenant-scoped.
type BookRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, tenantID uuid.UUID, isbn string) (*model.Book, error)
	GetByOtherCode(ctx context.Context, tenantID uuid.UUID, code string) (*model.Book, error)
	// GetByTitleAndPublisher matches title case-insensitively under one publisher.
	GetByTitleAndPublisher(ctx context.Context, tenantID uuid.UUID, title string, publisherID uuid.UUID) (*model.Book, error)
	Create(ctx context.Context, book *model.Book) (*model.Book, error)
	// Delete is the compensating action when the first pricing insert for a
	// freshly created book fails.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PublisherRepository stores publishers with names normalized upper-case,
// unique per tenant.
type PublisherRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Publisher, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, normalizedName string) (*model.Publisher, error)
	// Create returns model.ErrPublisherExists when the unique name
	// constraint fires; callers re-fetch.
	Create(ctx context.Context, pub *model.Publisher) (*model.Publisher, error)
}

// PricingRepository stores price quotes keyed by (book, source).
type PricingRepository interface {
	GetByBookAndSource(ctx context.Context, tenantID, bookID uuid.UUID, source string) (*model.PricingRecord, error)
	ListByBook(ctx context.Context, tenantID, bookID uuid.UUID) ([]*model.PricingRecord, error)
	Create(ctx context.Context, rec *model.PricingRecord) (*model.PricingRecord, error)
	// UpdateRateDiscount updates the reconciled fields by record id and
	// refreshes last_updated.
	UpdateRateDiscount(ctx context.Context, tenantID, id uuid.UUID, rate, discount decimal.Decimal) error
}
