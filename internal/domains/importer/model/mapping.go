package model

// ========================================
// HEADER MAPPING RESULTS
// ========================================

// Suggestion is a non-binding fuzzy hint for an unmatched header.
type Suggestion struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

// MappingResult is what the header mapper produces for an uploaded file.
type MappingResult struct {
	// Mapping holds headers matched exactly against the canonical
	// dictionary (or taken verbatim from a matched template).
	Mapping Mapping `json:"mapping"`
	// Unmapped headers matched neither dictionary.
	Unmapped []string `json:"unmapped,omitempty"`
	// Suggestions are fuzzy-dictionary hits; the client must confirm them.
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// MappingValidation reports required-field coverage per category.
// Book data needs title and author; pricing data needs rate and currency.
type MappingValidation struct {
	Valid              bool     `json:"valid"`
	MissingBookFields  []string `json:"missing_book_fields,omitempty"`
	MissingPriceFields []string `json:"missing_price_fields,omitempty"`
	UnknownFields      []string `json:"unknown_fields,omitempty"`
}
