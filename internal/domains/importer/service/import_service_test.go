package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"bookquote-backend/internal/config"
	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	books      *fakeBookRepo
	publishers *fakePublisherRepo
	pricing    *fakePricingRepo
	templates  *fakeTemplateRepo
	artifacts  *fakeArtifactStore
	service    *ImportService
	tenantID   uuid.UUID
}

func newImportFixture() *importFixture {
	cfg := config.ImportConfig{
		DefaultCurrency: "USD",
		MaxRows:         100,
		ArtifactPrefix:  "imports",
	}

	f := &importFixture{
		books:      newFakeBookRepo(),
		publishers: newFakePublisherRepo(),
		pricing:    newFakePricingRepo(),
		templates:  newFakeTemplateRepo(),
		artifacts:  newFakeArtifactStore(),
		tenantID:   uuid.New(),
	}
	templateSvc := NewTemplateService(f.templates, nil, cfg)
	f.service = NewImportService(f.books, f.publishers, f.pricing, f.templates, templateSvc, f.artifacts, cfg)
	return f
}

var basicMapping = model.Mapping{
	"ISBN":     model.FieldISBN,
	"Title":    model.FieldTitle,
	"Author":   model.FieldAuthor,
	"Price":    model.FieldRate,
	"Currency": model.FieldCurrency,
}

func (f *importFixture) run(t *testing.T, csv string, req model.RunImportRequest) *model.ImportReport {
	t.Helper()
	report, err := f.service.Run(context.Background(), f.tenantID, "upload.csv", strings.NewReader(csv), req)
	require.NoError(t, err)
	return report
}

func TestImportNewThenUnchangedDuplicate(t *testing.T) {
	f := newImportFixture()

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n" +
		"978-0306406157,Book A,Auth,10,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Conflicts)
	assert.Equal(t, 0, report.Errors)

	require.Len(t, f.books.books, 1)
	require.Len(t, f.pricing.records, 1)
	for _, rec := range f.pricing.records {
		assert.Equal(t, "vendor-a", rec.Source)
		assert.True(t, rec.Rate.Equal(decimal.RequireFromString("10")))
	}

	require.Len(t, report.DuplicateDetails, 1)
	assert.Equal(t, 3, report.DuplicateDetails[0].Row)
	assert.Equal(t, model.ActionNoChange, report.DuplicateDetails[0].Action)
	assert.Equal(t, model.MatchByISBN, report.DuplicateDetails[0].MatchedBy)
}

func TestImportDuplicateWithPriceChange(t *testing.T) {
	f := newImportFixture()

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n" +
		"978-0306406157,Book A,Auth,20,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, f.pricing.updates)

	require.Len(t, f.pricing.records, 1)
	for _, rec := range f.pricing.records {
		assert.True(t, rec.Rate.Equal(decimal.RequireFromString("20")), "rate updated in place")
	}

	require.Len(t, report.DuplicateDetails, 1)
	detail := report.DuplicateDetails[0]
	assert.Equal(t, model.ActionUpdatePrice, detail.Action)
	require.Contains(t, detail.Differences, "rate")
	assert.True(t, detail.Differences["rate"].Old.(decimal.Decimal).Equal(decimal.RequireFromString("10")))
	assert.True(t, detail.Differences["rate"].New.(decimal.Decimal).Equal(decimal.RequireFromString("20")))
}

func TestImportTitleConflict(t *testing.T) {
	f := newImportFixture()

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Foo,Auth,10,USD\n" +
		"978-0306406157,Bar,Auth,10,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Conflicts)
	assert.Equal(t, 0, report.Duplicates)

	require.Len(t, report.ConflictDetails, 1)
	detail := report.ConflictDetails[0]
	assert.Equal(t, 3, detail.Row)
	require.Contains(t, detail.ConflictFields, "title")
	assert.Equal(t, "Foo", detail.ConflictFields["title"].Old)
	assert.Equal(t, "Bar", detail.ConflictFields["title"].New)

	// Conflict rows never mutate the catalog.
	require.Len(t, f.books.books, 1)
	for _, b := range f.books.books {
		assert.Equal(t, "Foo", b.Title)
	}
	assert.Len(t, f.pricing.records, 1)
	assert.Zero(t, f.pricing.updates)
}

func TestImportSkipsUnidentifiableRows(t *testing.T) {
	f := newImportFixture()

	csv := "ISBN,Title,Author,Price,Currency\n" +
		",,Auth,10,USD\n" +
		"978-0306406157,Book A,Auth,10,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Errors)
	assert.Equal(t, 1, report.Inserted)

	require.Len(t, report.SkippedDetails, 1)
	assert.Equal(t, 2, report.SkippedDetails[0].Row)
	assert.NotEmpty(t, report.SkippedDetails[0].Reason)
}

func TestImportRowErrorsAreIsolated(t *testing.T) {
	f := newImportFixture()
	f.books.createErr = fmt.Errorf("insert blew up")

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n" +
		"0306406152,Book B,Auth,12,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 2, report.Errors, "every row fails individually, run completes")
	assert.Equal(t, 0, report.Inserted)
	require.Len(t, report.ErrorDetails, 2)
	assert.Equal(t, 2, report.ErrorDetails[0].Row)
	assert.NotEmpty(t, report.ErrorDetails[0].RawCells)
}

func TestImportCompensatingDelete(t *testing.T) {
	f := newImportFixture()
	f.pricing.createErr = fmt.Errorf("pricing insert failed")

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n"

	report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 1, report.Errors)

	require.Len(t, f.books.createdIDs, 1)
	assert.Equal(t, f.books.createdIDs, f.books.deletedIDs, "orphaned book rolled back")
	assert.Empty(t, f.books.books)
}

func TestImportPublisherGetOrCreate(t *testing.T) {
	mapping := model.Mapping{
		"Title":     model.FieldTitle,
		"Author":    model.FieldAuthor,
		"Publisher": model.FieldPublisherName,
		"Price":     model.FieldRate,
		"Currency":  model.FieldCurrency,
	}

	t.Run("publisher created once and reused", func(t *testing.T) {
		f := newImportFixture()

		csv := "Title,Author,Publisher,Price,Currency\n" +
			"Book A,Auth,Pearson,10,USD\n" +
			"Book B,Auth,pearson ,12,USD\n"

		report := f.run(t, csv, model.RunImportRequest{Mapping: mapping, SourceLabel: "vendor-a"})

		assert.Equal(t, 2, report.Inserted)
		assert.Len(t, f.publishers.publishers, 1, "normalized name dedupes")
	})

	t.Run("lost insert race falls back to refetch", func(t *testing.T) {
		f := newImportFixture()
		f.publishers.raceOnce = true

		csv := "Title,Author,Publisher,Price,Currency\n" +
			"Book A,Auth,Pearson,10,USD\n"

		report := f.run(t, csv, model.RunImportRequest{Mapping: mapping, SourceLabel: "vendor-a"})

		assert.Equal(t, 1, report.Inserted)
		assert.Equal(t, 0, report.Errors)
	})
}

func TestImportWithTemplate(t *testing.T) {
	f := newImportFixture()
	tpl, err := f.templates.Create(context.Background(), &model.ImportTemplate{
		TenantID:        f.tenantID,
		Name:            "vendor-a sheet",
		Mapping:         basicMapping,
		ExpectedHeaders: []string{"ISBN", "Title", "Author", "Price", "Currency"},
		Fingerprint:     model.HeaderFingerprint([]string{"ISBN", "Title", "Author", "Price", "Currency"}),
	})
	require.NoError(t, err)

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n" +
		"0306406152,Book B,Auth,12,USD\n"

	report := f.run(t, csv, model.RunImportRequest{TemplateID: &tpl.ID, SourceLabel: "vendor-a"})

	assert.Equal(t, 2, report.Inserted)
	require.NotNil(t, report.TemplateID)
	assert.Equal(t, tpl.ID, *report.TemplateID)
	assert.Equal(t, 1, f.templates.usage[tpl.ID], "usage counted once per run, not per row")
}

func TestImportTemplateHeaderMismatch(t *testing.T) {
	f := newImportFixture()
	tpl, err := f.templates.Create(context.Background(), &model.ImportTemplate{
		TenantID:        f.tenantID,
		Name:            "vendor-a sheet",
		Mapping:         basicMapping,
		ExpectedHeaders: []string{"ISBN", "Title", "Author", "Price", "Currency", "Stock"},
	})
	require.NoError(t, err)

	csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"

	_, runErr := f.service.Run(context.Background(), f.tenantID, "upload.csv", strings.NewReader(csv),
		model.RunImportRequest{TemplateID: &tpl.ID})

	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "does not match")
	assert.Zero(t, f.templates.usage[tpl.ID], "mismatch does not count usage")
}

func TestImportFatalInputs(t *testing.T) {
	t.Run("mapping without identity field", func(t *testing.T) {
		f := newImportFixture()

		_, err := f.service.Run(context.Background(), f.tenantID, "upload.csv",
			strings.NewReader("Price,Currency\n10,USD\n"),
			model.RunImportRequest{Mapping: model.Mapping{"Price": model.FieldRate}})

		require.Error(t, err)
	})

	t.Run("row cap exceeded", func(t *testing.T) {
		f := newImportFixture()

		var sb strings.Builder
		sb.WriteString("ISBN,Title,Author,Price,Currency\n")
		for i := 0; i < 101; i++ {
			fmt.Fprintf(&sb, ",Book %d,Auth,10,USD\n", i)
		}

		_, err := f.service.Run(context.Background(), f.tenantID, "upload.csv",
			strings.NewReader(sb.String()),
			model.RunImportRequest{Mapping: basicMapping})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "row limit")
	})

	t.Run("unreadable file", func(t *testing.T) {
		f := newImportFixture()

		_, err := f.service.Run(context.Background(), f.tenantID, "upload.csv",
			strings.NewReader(""),
			model.RunImportRequest{Mapping: basicMapping})

		require.Error(t, err)
	})
}

func TestImportCancellation(t *testing.T) {
	f := newImportFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csv := "ISBN,Title,Author,Price,Currency\n" +
		"978-0306406157,Book A,Auth,10,USD\n" +
		"0306406152,Book B,Auth,12,USD\n"

	report, err := f.service.Run(ctx, f.tenantID, "upload.csv", strings.NewReader(csv),
		model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Equal(t, 0, report.Inserted, "already-cancelled context processes nothing")
	assert.Equal(t, 2, report.TotalRows)
}

func TestImportAuditArtifact(t *testing.T) {
	t.Run("report uploaded as json", func(t *testing.T) {
		f := newImportFixture()

		csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
		report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

		require.NotEmpty(t, report.ArtifactKey)
		assert.True(t, strings.HasPrefix(report.ArtifactKey, "imports/"+f.tenantID.String()+"/import-vendor-a-"))
		assert.NotEmpty(t, report.ArtifactURL)

		data, ok := f.artifacts.uploads[report.ArtifactKey]
		require.True(t, ok)

		var stored model.ImportReport
		require.NoError(t, json.Unmarshal(data, &stored))
		assert.Equal(t, 1, stored.Inserted)
		assert.Equal(t, "vendor-a", stored.Source)
	})

	t.Run("upload failure does not fail the run", func(t *testing.T) {
		f := newImportFixture()
		f.artifacts.err = fmt.Errorf("bucket unavailable")

		csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
		report := f.run(t, csv, model.RunImportRequest{Mapping: basicMapping, SourceLabel: "vendor-a"})

		assert.Equal(t, 1, report.Inserted)
		assert.Empty(t, report.ArtifactKey)
	})
}

func TestImportSourceLabelDefaults(t *testing.T) {
	f := newImportFixture()

	csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
	report, err := f.service.Run(context.Background(), f.tenantID, "q3 pricelist.csv",
		strings.NewReader(csv), model.RunImportRequest{Mapping: basicMapping})
	require.NoError(t, err)

	assert.Equal(t, "q3 pricelist", report.Source, "label falls back to the file name")
	for _, rec := range f.pricing.records {
		assert.Equal(t, "q3 pricelist", rec.Source)
	}
}

func TestValidateUpload(t *testing.T) {
	t.Run("suggests mapping and reports fingerprint", func(t *testing.T) {
		f := newImportFixture()

		csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
		resp, err := f.service.ValidateUpload(context.Background(), f.tenantID, "upload.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Equal(t, []string{"ISBN", "Title", "Author", "Price", "Currency"}, resp.Headers)
		assert.Equal(t, model.HeaderFingerprint(resp.Headers), resp.Fingerprint)
		assert.Equal(t, 1, resp.RowCount)
		assert.True(t, resp.Validation.Valid)
		assert.Nil(t, resp.MatchedTemplate)
	})

	t.Run("matching template is surfaced", func(t *testing.T) {
		f := newImportFixture()
		headers := []string{"ISBN", "Title", "Author", "Price", "Currency"}
		_, err := f.templates.Create(context.Background(), &model.ImportTemplate{
			TenantID:        f.tenantID,
			Name:            "vendor-a sheet",
			Mapping:         basicMapping,
			ExpectedHeaders: headers,
			Fingerprint:     model.HeaderFingerprint(headers),
		})
		require.NoError(t, err)

		csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
		resp, err := f.service.ValidateUpload(context.Background(), f.tenantID, "upload.csv", strings.NewReader(csv))
		require.NoError(t, err)

		require.NotNil(t, resp.MatchedTemplate)
		assert.Equal(t, "vendor-a sheet", resp.MatchedTemplate.Name)
		require.NotNil(t, resp.TemplateMatch)
		assert.True(t, resp.TemplateMatch.Matched)
	})

	t.Run("no mutation happens", func(t *testing.T) {
		f := newImportFixture()

		csv := "ISBN,Title,Author,Price,Currency\n978-0306406157,Book A,Auth,10,USD\n"
		_, err := f.service.ValidateUpload(context.Background(), f.tenantID, "upload.csv", strings.NewReader(csv))
		require.NoError(t, err)

		assert.Empty(t, f.books.books)
		assert.Empty(t, f.pricing.records)
	})
}
