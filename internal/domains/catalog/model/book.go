package model

import (
	"time"

	"github.com/google/uuid"
)

// Book is one catalog entry, scoped to a tenant.
//
// Identity precedence for lookups: isbn > other_code > (title, publisher).
// This is a lookup order only; the store does not enforce it as a
// uniqueness constraint (many books have neither isbn nor other_code).
type Book struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Title       string     `json:"title" db:"title"`
	Author      string     `json:"author,omitempty" db:"author"`
	Edition     string     `json:"edition,omitempty" db:"edition"`
	Year        *int       `json:"year,omitempty" db:"year"`
	ISBN        *string    `json:"isbn,omitempty" db:"isbn"`             // normalized, sparse
	OtherCode   *string    `json:"other_code,omitempty" db:"other_code"` // alternate identifier
	PublisherID *uuid.UUID `json:"publisher_id,omitempty" db:"publisher_id"`

	Classification string   `json:"classification,omitempty" db:"classification"`
	Remarks        string   `json:"remarks,omitempty" db:"remarks"`
	Tags           []string `json:"tags,omitempty" db:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
