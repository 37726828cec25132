package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingRecord is one price quote for a book from one source (a vendor
// name, a supplier feed, or an uploaded file's label). A book carries at
// most one record per source: a second quote for the same (book, source)
// is always an update target, never a second insert.
//
// VendorID is the newer vendor-scoped schema; reconciliation still keys on
// Source.
type PricingRecord struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	TenantID uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	BookID   uuid.UUID  `json:"book_id" db:"book_id"`
	Source   string     `json:"source" db:"source"`
	VendorID *uuid.UUID `json:"vendor_id,omitempty" db:"vendor_id"`

	Rate        decimal.Decimal `json:"rate" db:"rate"`
	Currency    string          `json:"currency" db:"currency"`
	Discount    decimal.Decimal `json:"discount" db:"discount"` // percent
	Stock       *int            `json:"stock,omitempty" db:"stock"`
	BindingType *string         `json:"binding_type,omitempty" db:"binding_type"`

	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
