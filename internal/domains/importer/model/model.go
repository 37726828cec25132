package model

import (
	"time"

	catalogModel "bookquote-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========================================
// DOMAIN FIELD NAMES
// ========================================

// Canonical field names a spreadsheet column can map to. Mapping values
// must come from this set; everything else is rejected at validation time.
const (
	FieldTitle          = "title"
	FieldAuthor         = "author"
	FieldEdition        = "edition"
	FieldYear           = "year"
	FieldISBN           = "isbn"
	FieldOtherCode      = "other_code"
	FieldPublisherName  = "publisher_name"
	FieldBindingType    = "binding_type"
	FieldClassification = "classification"
	FieldRemarks        = "remarks"
	FieldRate           = "rate"
	FieldCurrency       = "currency"
	FieldDiscount       = "discount"
	FieldSource         = "source"
	FieldStock          = "stock"
)

// KnownFields is the closed set of valid mapping targets.
var KnownFields = map[string]bool{
	FieldTitle:          true,
	FieldAuthor:         true,
	FieldEdition:        true,
	FieldYear:           true,
	FieldISBN:           true,
	FieldOtherCode:      true,
	FieldPublisherName:  true,
	FieldBindingType:    true,
	FieldClassification: true,
	FieldRemarks:        true,
	FieldRate:           true,
	FieldCurrency:       true,
	FieldDiscount:       true,
	FieldSource:         true,
	FieldStock:          true,
}

// Mapping maps a spreadsheet header (as it appears in the file) to a
// canonical field name.
type Mapping map[string]string

// ========================================
// ROW STATUS (terminal per row, no transitions back)
// ========================================

type RowStatus string

const (
	StatusPending   RowStatus = "PENDING"
	StatusSkipped   RowStatus = "SKIPPED"
	StatusNew       RowStatus = "NEW"
	StatusDuplicate RowStatus = "DUPLICATE"
	StatusConflict  RowStatus = "CONFLICT"
	StatusError     RowStatus = "ERROR"
)

// ImportKind selects the per-row minimum field rules.
type ImportKind string

const (
	// KindFull imports book + pricing data; rows need title or isbn.
	KindFull ImportKind = "full"
	// KindPriceOnly additionally requires a parseable rate per row.
	KindPriceOnly ImportKind = "price_only"
	// KindStockOnly additionally requires a stock count per row.
	KindStockOnly ImportKind = "stock_only"
)

// ========================================
// NORMALIZED ROW
// ========================================

// RawRow is one spreadsheet row before mapping: header → cell value.
// Sheet shape is unknown up front, so rows stay dynamic until the
// normalizer converts them.
type RawRow struct {
	Number int               `json:"row"`
	Cells  map[string]string `json:"cells"`
}

type BookData struct {
	Title          string  `json:"title,omitempty"`
	Author         string  `json:"author,omitempty"`
	Edition        string  `json:"edition,omitempty"`
	Year           *int    `json:"year,omitempty"`
	ISBN           *string `json:"isbn,omitempty"`
	OtherCode      *string `json:"other_code,omitempty"`
	Classification string  `json:"classification,omitempty"`
	Remarks        string  `json:"remarks,omitempty"`
}

type PricingData struct {
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	Discount    decimal.Decimal  `json:"discount"`
	Stock       *int             `json:"stock,omitempty"`
	Source      string           `json:"source,omitempty"`
	BindingType *string          `json:"binding_type,omitempty"`
}

type PublisherData struct {
	Name string `json:"publisher_name,omitempty"`
}

// NormalizedRow is the typed result of applying a mapping to one raw row.
type NormalizedRow struct {
	Number     int           `json:"row"`
	Book       BookData      `json:"book"`
	Pricing    PricingData   `json:"pricing"`
	Publisher  PublisherData `json:"publisher"`
	Skip       bool          `json:"skip,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
}

// ========================================
// CLASSIFICATION
// ========================================

// FieldDiff is an old/new pair for one field that differs.
type FieldDiff struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// MatchKey records which identity rule produced a match.
type MatchKey string

const (
	MatchByISBN           MatchKey = "isbn"
	MatchByOtherCode      MatchKey = "other_code"
	MatchByTitlePublisher MatchKey = "title_publisher"
)

type PricingAction string

const (
	ActionAddPrice    PricingAction = "ADD_PRICE"
	ActionUpdatePrice PricingAction = "UPDATE_PRICE"
	ActionNoChange    PricingAction = "NO_CHANGE"
)

// PricingDecision is the reconciler's verdict for one (book, source) pair.
type PricingDecision struct {
	Action      PricingAction               `json:"action"`
	Existing    *catalogModel.PricingRecord `json:"-"`
	Differences map[string]FieldDiff        `json:"differences,omitempty"`
	Message     string                      `json:"message,omitempty"`
}

// Classification is the identity resolver's structured result. Expected
// business outcomes (NEW/DUPLICATE/CONFLICT) come back here, never as
// errors; errors are reserved for datastore failures.
type Classification struct {
	Status         RowStatus            `json:"status"`
	Matched        *catalogModel.Book   `json:"-"`
	MatchedBy      MatchKey             `json:"matched_by,omitempty"`
	ConflictFields map[string]FieldDiff `json:"conflict_fields,omitempty"`
	Pricing        *PricingDecision     `json:"pricing,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// ========================================
// IMPORT REPORT
// ========================================

type ConflictDetail struct {
	Row            int                  `json:"row"`
	Title          string               `json:"title,omitempty"`
	ISBN           string               `json:"isbn,omitempty"`
	MatchedBy      MatchKey             `json:"matched_by,omitempty"`
	ConflictFields map[string]FieldDiff `json:"conflict_fields"`
	Message        string               `json:"message,omitempty"`
}

type DuplicateDetail struct {
	Row         int                  `json:"row"`
	Title       string               `json:"title,omitempty"`
	BookID      uuid.UUID            `json:"book_id"`
	MatchedBy   MatchKey             `json:"matched_by"`
	Action      PricingAction        `json:"action"`
	Differences map[string]FieldDiff `json:"differences,omitempty"`
}

type ErrorDetail struct {
	Row      int               `json:"row"`
	Error    string            `json:"error"`
	RawCells map[string]string `json:"raw_cells,omitempty"`
}

type SkippedDetail struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport is the aggregate result of one import run. It is returned to
// the HTTP layer and persisted verbatim as the audit artifact.
type ImportReport struct {
	Source     string     `json:"source"`
	Kind       ImportKind `json:"kind"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`

	TotalRows  int `json:"total_rows"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Duplicates int `json:"duplicates"`
	Conflicts  int `json:"conflicts"`
	Errors     int `json:"errors"`
	Skipped    int `json:"skipped"`

	ConflictDetails  []ConflictDetail  `json:"conflict_details,omitempty"`
	DuplicateDetails []DuplicateDetail `json:"duplicate_details,omitempty"`
	ErrorDetails     []ErrorDetail     `json:"error_details,omitempty"`
	SkippedDetails   []SkippedDetail   `json:"skipped_details,omitempty"`

	// Cancelled is set when the context was cancelled mid-batch; counts
	// cover only the rows processed before cancellation.
	Cancelled bool `json:"cancelled,omitempty"`

	ArtifactKey string    `json:"artifact_key,omitempty"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
