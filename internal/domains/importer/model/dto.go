package model

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ========================================
// TEMPLATE DTOs
// ========================================

type CreateTemplateRequest struct {
	Name            string   `json:"name"`
	Mapping         Mapping  `json:"mapping"`
	ExpectedHeaders []string `json:"expected_headers"`
}

func (r CreateTemplateRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 100),
		),
		validation.Field(&r.Mapping,
			validation.Required.Error("mapping is required"),
		),
		validation.Field(&r.ExpectedHeaders,
			validation.Required.Error("expected_headers is required"),
			validation.Length(1, 200),
		),
	)
	if err != nil {
		return err
	}

	// Mapping targets must be canonical field names.
	for header, field := range r.Mapping {
		if !KnownFields[field] {
			return fmt.Errorf("mapping for header %q targets unknown field %q", header, field)
		}
	}
	return nil
}

// ========================================
// IMPORT DTOs
// ========================================

// RunImportRequest carries the non-file parts of an import submission.
// The mapping arrives as a JSON-encoded form field next to the multipart
// file.
type RunImportRequest struct {
	Mapping     Mapping    `json:"mapping"`
	TemplateID  *uuid.UUID `json:"template_id,omitempty"`
	SourceLabel string     `json:"source_label,omitempty"`
	Kind        ImportKind `json:"kind,omitempty"`
}

func (r RunImportRequest) Validate() error {
	if len(r.Mapping) == 0 && r.TemplateID == nil {
		return fmt.Errorf("either mapping or template_id is required")
	}
	for header, field := range r.Mapping {
		if !KnownFields[field] {
			return fmt.Errorf("mapping for header %q targets unknown field %q", header, field)
		}
	}
	switch r.Kind {
	case "", KindFull, KindPriceOnly, KindStockOnly:
	default:
		return fmt.Errorf("unknown import kind %q", r.Kind)
	}
	return nil
}

// ValidateUploadResponse is the dry-run response for a file upload.
type ValidateUploadResponse struct {
	Headers         []string          `json:"headers"`
	MappingResult   MappingResult     `json:"mapping_result"`
	Validation      MappingValidation `json:"validation"`
	Fingerprint     string            `json:"fingerprint"`
	MatchedTemplate *ImportTemplate   `json:"matched_template,omitempty"`
	TemplateMatch   *TemplateMatch    `json:"template_match,omitempty"`
	RowCount        int               `json:"row_count"`
}
