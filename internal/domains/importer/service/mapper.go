package service

import (
	"strings"

	"bookquote-backend/internal/domains/importer/model"
)

// HeaderMapper maps spreadsheet column headers to canonical domain fields
// using the exact dictionary, falling back to fuzzy suggestions.
type HeaderMapper struct{}

func NewHeaderMapper() *HeaderMapper {
	return &HeaderMapper{}
}

// SuggestMapping runs every header through the exact dictionary, then the
// fuzzy dictionary. Exact hits land in Mapping; fuzzy hits become
// Suggestions; the rest is Unmapped.
func (m *HeaderMapper) SuggestMapping(headers []string) model.MappingResult {
	result := model.MappingResult{
		Mapping: make(model.Mapping),
	}

	for _, header := range headers {
		trimmed := strings.TrimSpace(header)
		if trimmed == "" {
			continue
		}

		if field, ok := canonicalHeaders[trimmed]; ok {
			result.Mapping[header] = field
			continue
		}

		if field, ok := m.fuzzyLookup(trimmed); ok {
			result.Suggestions = append(result.Suggestions, model.Suggestion{
				Header: header,
				Field:  field,
			})
			continue
		}

		result.Unmapped = append(result.Unmapped, header)
	}

	return result
}

// fuzzyLookup tries a case-insensitive exact hit first, then the longest
// fuzzy key contained in the header.
func (m *HeaderMapper) fuzzyLookup(trimmed string) (string, bool) {
	lower := strings.ToLower(trimmed)

	if field, ok := fuzzyHeaders[lower]; ok {
		return field, true
	}

	bestLen := 0
	bestField := ""
	for key, field := range fuzzyHeaders {
		if len(key) > bestLen && strings.Contains(lower, key) {
			bestLen = len(key)
			bestField = field
		}
	}
	if bestLen > 0 {
		return bestField, true
	}
	return "", false
}

// ValidateMapping checks required-field coverage for book data (title,
// author) and pricing data (rate, currency), considering only mapped
// headers actually present in the upload.
func (m *HeaderMapper) ValidateMapping(headers []string, mapping model.Mapping) model.MappingValidation {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[model.NormalizeHeader(h)] = true
	}

	covered := make(map[string]bool)
	validation := model.MappingValidation{Valid: true}

	for header, field := range mapping {
		if !model.KnownFields[field] {
			validation.UnknownFields = append(validation.UnknownFields, field)
			validation.Valid = false
			continue
		}
		if present[model.NormalizeHeader(header)] {
			covered[field] = true
		}
	}

	for _, field := range requiredBookFields {
		if !covered[field] {
			validation.MissingBookFields = append(validation.MissingBookFields, field)
			validation.Valid = false
		}
	}
	for _, field := range requiredPriceFields {
		if !covered[field] {
			validation.MissingPriceFields = append(validation.MissingPriceFields, field)
			validation.Valid = false
		}
	}

	return validation
}
