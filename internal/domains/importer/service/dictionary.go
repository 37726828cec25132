package service

import "bookquote-backend/internal/domains/importer/model"

// Header dictionaries are data, not control flow: extending coverage means
// adding entries here, never touching the matching logic.

// canonicalHeaders is the exact-match dictionary. Lookup is case-sensitive
// on the trimmed header, so each accepted spelling is its own entry.
var canonicalHeaders = map[string]string{
	"ISBN":        model.FieldISBN,
	"Isbn":        model.FieldISBN,
	"ISBN No":     model.FieldISBN,
	"ISBN No.":    model.FieldISBN,
	"ISBN Number": model.FieldISBN,
	"ISBN-10":     model.FieldISBN,
	"ISBN-13":     model.FieldISBN,
	"ISBN 13":     model.FieldISBN,

	"Title":      model.FieldTitle,
	"Book Title": model.FieldTitle,

	"Author":      model.FieldAuthor,
	"Authors":     model.FieldAuthor,
	"Author Name": model.FieldAuthor,

	"Edition": model.FieldEdition,
	"Ed.":     model.FieldEdition,

	"Year":                model.FieldYear,
	"Pub Year":            model.FieldYear,
	"Publication Year":    model.FieldYear,
	"Year of Publication": model.FieldYear,

	"Publisher":      model.FieldPublisherName,
	"Publisher Name": model.FieldPublisherName,

	"Binding":      model.FieldBindingType,
	"Binding Type": model.FieldBindingType,
	"Format":       model.FieldBindingType,

	"Classification": model.FieldClassification,
	"Category":       model.FieldClassification,
	"Subject":        model.FieldClassification,

	"Remarks":  model.FieldRemarks,
	"Notes":    model.FieldRemarks,
	"Comments": model.FieldRemarks,

	"Price":      model.FieldRate,
	"Rate":       model.FieldRate,
	"MRP":        model.FieldRate,
	"List Price": model.FieldRate,
	"Unit Price": model.FieldRate,

	"Currency": model.FieldCurrency,
	"Curr":     model.FieldCurrency,

	"Discount":   model.FieldDiscount,
	"Discount %": model.FieldDiscount,
	"Disc":       model.FieldDiscount,
	"Disc %":     model.FieldDiscount,

	"Source":   model.FieldSource,
	"Vendor":   model.FieldSource,
	"Supplier": model.FieldSource,

	"Stock":     model.FieldStock,
	"Qty":       model.FieldStock,
	"Quantity":  model.FieldStock,
	"Stock Qty": model.FieldStock,

	"Other Code":   model.FieldOtherCode,
	"Code":         model.FieldOtherCode,
	"Product Code": model.FieldOtherCode,
	"Item Code":    model.FieldOtherCode,
	"SKU":          model.FieldOtherCode,
}

// fuzzyHeaders is the secondary suggestion dictionary. Lookup is
// case-insensitive on the trimmed header; hits are non-binding suggestions
// the client must confirm.
var fuzzyHeaders = map[string]string{
	"book name":        model.FieldTitle,
	"name of book":     model.FieldTitle,
	"book":             model.FieldTitle,
	"writer":           model.FieldAuthor,
	"written by":       model.FieldAuthor,
	"cost":             model.FieldRate,
	"amount":           model.FieldRate,
	"selling price":    model.FieldRate,
	"publishing house": model.FieldPublisherName,
	"pub":              model.FieldPublisherName,
	"pub.":             model.FieldPublisherName,
	"barcode":          model.FieldISBN,
	"ean":              model.FieldISBN,
	"yr":               model.FieldYear,
	"disc%":            model.FieldDiscount,
	"discount%":        model.FieldDiscount,
	"class":            model.FieldClassification,
	"genre":            model.FieldClassification,
	"note":             model.FieldRemarks,
	"item no":          model.FieldOtherCode,
	"item number":      model.FieldOtherCode,
	"ref":              model.FieldOtherCode,
	"ref no":           model.FieldOtherCode,
	"in stock":         model.FieldStock,
	"qty in hand":      model.FieldStock,
	"copies":           model.FieldStock,
	"curr.":            model.FieldCurrency,
	"ccy":              model.FieldCurrency,
}

// requiredBookFields and requiredPriceFields drive mapping validation.
var (
	requiredBookFields  = []string{model.FieldTitle, model.FieldAuthor}
	requiredPriceFields = []string{model.FieldRate, model.FieldCurrency}
)
