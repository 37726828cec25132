package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Publisher name is stored normalized (trimmed, upper-cased) and is unique
// per tenant. Publishers are created lazily during import.
type Publisher struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizePublisherName applies the canonical form used for lookup and
// storage: trim then upper-case.
func NormalizePublisherName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
