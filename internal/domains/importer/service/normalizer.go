package service

import (
	"strconv"
	"strings"

	"bookquote-backend/internal/domains/importer/model"
	"bookquote-backend/pkg/isbn"

	"github.com/shopspring/decimal"
)

// RowNormalizer converts one raw row plus a mapping into typed
// book/pricing/publisher sub-records, applying defaults and coercion.
type RowNormalizer struct {
	defaultCurrency string
}

func NewRowNormalizer(defaultCurrency string) *RowNormalizer {
	return &RowNormalizer{defaultCurrency: defaultCurrency}
}

// Normalize routes every mapped, non-empty cell into its bucket and coerces
// types. Bad numerics become absent values, never errors; a bad ISBN is
// dropped rather than rejected. Rows without usable identifying data come
// back flagged Skip and never reach the identity resolver.
func (n *RowNormalizer) Normalize(row model.RawRow, mapping model.Mapping, sourceLabel string, kind model.ImportKind) model.NormalizedRow {
	out := model.NormalizedRow{Number: row.Number}

	for header, field := range mapping {
		value := strings.TrimSpace(row.Cells[header])
		if value == "" {
			continue
		}

		switch field {
		case model.FieldRate:
			if rate, err := decimal.NewFromString(value); err == nil {
				out.Pricing.Rate = &rate
			}
		case model.FieldCurrency:
			out.Pricing.Currency = value
		case model.FieldDiscount:
			if d, err := decimal.NewFromString(strings.TrimSuffix(value, "%")); err == nil {
				out.Pricing.Discount = d
			}
		case model.FieldSource:
			out.Pricing.Source = value
		case model.FieldStock:
			if stock, err := strconv.Atoi(value); err == nil {
				out.Pricing.Stock = &stock
			}
		case model.FieldBindingType:
			v := value
			out.Pricing.BindingType = &v
		case model.FieldPublisherName:
			out.Publisher.Name = value
		case model.FieldTitle:
			out.Book.Title = value
		case model.FieldAuthor:
			out.Book.Author = value
		case model.FieldEdition:
			out.Book.Edition = value
		case model.FieldYear:
			if year, err := strconv.Atoi(value); err == nil {
				out.Book.Year = &year
			}
		case model.FieldISBN:
			cleaned := isbn.Clean(value)
			if isbn.IsValid(cleaned) {
				out.Book.ISBN = &cleaned
			}
		case model.FieldOtherCode:
			v := value
			out.Book.OtherCode = &v
		case model.FieldClassification:
			out.Book.Classification = value
		case model.FieldRemarks:
			out.Book.Remarks = value
		}
	}

	// Defaults.
	if out.Pricing.Source == "" {
		out.Pricing.Source = sourceLabel
	}
	if out.Pricing.Currency == "" {
		out.Pricing.Currency = n.defaultCurrency
	}

	// Skippability: a row with no identifying data never reaches the
	// resolver; type-mandated fields tighten the rule per import kind.
	switch {
	case out.Book.Title == "" && out.Book.ISBN == nil:
		out.Skip = true
		out.SkipReason = "no identifying data (title or isbn required)"
	case kind == model.KindPriceOnly && out.Pricing.Rate == nil:
		out.Skip = true
		out.SkipReason = "price import requires a rate"
	case kind == model.KindStockOnly && out.Pricing.Stock == nil:
		out.Skip = true
		out.SkipReason = "stock import requires a stock count"
	}

	return out
}
