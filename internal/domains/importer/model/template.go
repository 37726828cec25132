package model

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImportTemplate is a saved header→field mapping a tenant can reuse across
// uploads. Templates are created and edited outside the import run; the run
// itself only reads them (plus a usage-count bump, once per attempt).
type ImportTemplate struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	TenantID        uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name            string     `json:"name" db:"name"`
	Mapping         Mapping    `json:"mapping" db:"mapping"`
	ExpectedHeaders []string   `json:"expected_headers" db:"expected_headers"`
	Fingerprint     string     `json:"fingerprint" db:"fingerprint"`
	UsageCount      int        `json:"usage_count" db:"usage_count"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HeaderFingerprint computes the stable fingerprint of a header list:
// SHA-1 hex of the lower-cased, trimmed, non-empty headers joined by "|",
// in their original order. Order matters; case and surrounding whitespace
// do not.
func HeaderFingerprint(headers []string) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		parts = append(parts, h)
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// NormalizeHeader is the comparison form for template matching:
// case- and whitespace-insensitive.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// TemplateMatch is the result of checking uploaded headers against a
// stored template.
type TemplateMatch struct {
	Matched bool `json:"matched"`
	// ExtraHeaders are present in the upload but not expected by the
	// template. Tolerated, reported for visibility.
	ExtraHeaders []string `json:"extra_headers,omitempty"`
	// MissingHeaders are expected by the template but absent from the
	// upload. Any entry here means no match.
	MissingHeaders []string `json:"missing_headers,omitempty"`
}

// MatchesHeaders checks that every expected header is present in the
// uploaded set (normalized comparison). Extra uploaded headers are fine.
func (t *ImportTemplate) MatchesHeaders(headers []string) TemplateMatch {
	uploaded := make(map[string]bool, len(headers))
	for _, h := range headers {
		uploaded[NormalizeHeader(h)] = true
	}

	expected := make(map[string]bool, len(t.ExpectedHeaders))
	match := TemplateMatch{Matched: true}
	for _, h := range t.ExpectedHeaders {
		norm := NormalizeHeader(h)
		expected[norm] = true
		if !uploaded[norm] {
			match.Matched = false
			match.MissingHeaders = append(match.MissingHeaders, h)
		}
	}

	for _, h := range headers {
		if !expected[NormalizeHeader(h)] {
			match.ExtraHeaders = append(match.ExtraHeaders, h)
		}
	}

	return match
}
