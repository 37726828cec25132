package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"bookquote-backend/internal/config"
	catalogModel "bookquote-backend/internal/domains/catalog/model"
	catalogRepo "bookquote-backend/internal/domains/catalog/repository"
	"bookquote-backend/internal/domains/importer/model"
	"bookquote-backend/internal/domains/importer/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ArtifactStore persists the audit log artifact of an import run.
// Satisfied by internal/infrastructure/storage.MinIOStorage.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImportService drives the per-row import pipeline: normalize → resolve →
// reconcile → apply, with isolated per-row failure handling and a final
// structured report plus audit artifact.
//
// Rows are processed strictly sequentially: later rows may depend on
// publishers or books created by earlier rows in the same batch.
type ImportService struct {
	books       catalogRepo.BookRepository
	publishers  catalogRepo.PublisherRepository
	pricing     catalogRepo.PricingRepository
	templates   repository.TemplateRepository
	templateSvc *TemplateService

	mapper     *HeaderMapper
	normalizer *RowNormalizer
	resolver   *IdentityResolver
	reconciler *PricingReconciler

	artifacts ArtifactStore
	cfg       config.ImportConfig
}

func NewImportService(
	books catalogRepo.BookRepository,
	publishers catalogRepo.PublisherRepository,
	pricing catalogRepo.PricingRepository,
	templates repository.TemplateRepository,
	templateSvc *TemplateService,
	artifacts ArtifactStore,
	cfg config.ImportConfig,
) *ImportService {
	reconciler := NewPricingReconciler(pricing)
	return &ImportService{
		books:       books,
		publishers:  publishers,
		pricing:     pricing,
		templates:   templates,
		templateSvc: templateSvc,
		mapper:      NewHeaderMapper(),
		normalizer:  NewRowNormalizer(cfg.DefaultCurrency),
		resolver:    NewIdentityResolver(books, publishers, reconciler),
		reconciler:  reconciler,
		artifacts:   artifacts,
		cfg:         cfg,
	}
}

// ========================================
// VALIDATE (dry run)
// ========================================

// ValidateUpload parses the file, suggests a mapping and checks whether a
// saved template matches the header fingerprint. No catalog mutation.
func (s *ImportService) ValidateUpload(ctx context.Context, tenantID uuid.UUID, filename string, file io.Reader) (*model.ValidateUploadResponse, error) {
	sheet, err := ReadSheet(filename, file)
	if err != nil {
		return nil, err
	}

	fingerprint := model.HeaderFingerprint(sheet.Headers)
	mappingResult := s.mapper.SuggestMapping(sheet.Headers)

	resp := &model.ValidateUploadResponse{
		Headers:       sheet.Headers,
		MappingResult: mappingResult,
		Fingerprint:   fingerprint,
		RowCount:      len(sheet.Rows),
	}

	effective := mappingResult.Mapping
	if tpl, err := s.templateSvc.FindByFingerprint(ctx, tenantID, fingerprint); err != nil {
		return nil, err
	} else if tpl != nil {
		match := tpl.MatchesHeaders(sheet.Headers)
		if match.Matched {
			// Template mapping wins verbatim over the dictionary result.
			effective = tpl.Mapping
			resp.MatchedTemplate = tpl
			resp.TemplateMatch = &match
		}
	}

	resp.Validation = s.mapper.ValidateMapping(sheet.Headers, effective)
	return resp, nil
}

// ========================================
// RUN
// ========================================

// Run executes a full import. Fatal input problems (unreadable file, no
// headers, row cap exceeded, unusable mapping) return an error and no
// report; once row processing starts the caller always gets a report.
func (s *ImportService) Run(ctx context.Context, tenantID uuid.UUID, filename string, file io.Reader, req model.RunImportRequest) (*model.ImportReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sheet, err := ReadSheet(filename, file)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxRows > 0 && len(sheet.Rows) > s.cfg.MaxRows {
		return nil, fmt.Errorf("file exceeds %d row limit", s.cfg.MaxRows)
	}

	mapping, templateID, err := s.resolveMapping(ctx, tenantID, sheet, req)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = model.KindFull
	}

	sourceLabel := strings.TrimSpace(req.SourceLabel)
	if sourceLabel == "" {
		sourceLabel = sourceFromFilename(filename)
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("source", sourceLabel).
		Str("kind", string(kind)).
		Int("total_rows", len(sheet.Rows)).
		Msg("Starting import run")

	report := &model.ImportReport{
		Source:     sourceLabel,
		Kind:       kind,
		TemplateID: templateID,
		TotalRows:  len(sheet.Rows),
		StartedAt:  time.Now().UTC(),
	}

	for _, raw := range sheet.Rows {
		// Cancellation between rows: report what was processed so far.
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		s.processRow(ctx, tenantID, raw, mapping, sourceLabel, kind, report)
	}

	report.CompletedAt = time.Now().UTC()
	s.storeArtifact(ctx, tenantID, report)

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("source", sourceLabel).
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("duplicates", report.Duplicates).
		Int("conflicts", report.Conflicts).
		Int("errors", report.Errors).
		Int("skipped", report.Skipped).
		Bool("cancelled", report.Cancelled).
		Msg("Import run completed")

	return report, nil
}

// resolveMapping picks the effective mapping: an explicitly requested
// template (headers must match), or the mapping sent with the request.
// Template usage is counted here, exactly once per attempt.
func (s *ImportService) resolveMapping(ctx context.Context, tenantID uuid.UUID, sheet *Sheet, req model.RunImportRequest) (model.Mapping, *uuid.UUID, error) {
	if req.TemplateID == nil {
		if !mappingHasIdentity(req.Mapping) {
			return nil, nil, fmt.Errorf("mapping must cover title or isbn")
		}
		return req.Mapping, nil, nil
	}

	tpl, err := s.templates.GetByID(ctx, tenantID, *req.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if tpl == nil {
		return nil, nil, fmt.Errorf("import template %s not found", req.TemplateID)
	}

	match := tpl.MatchesHeaders(sheet.Headers)
	if !match.Matched {
		return nil, nil, fmt.Errorf("template %q does not match uploaded headers (missing: %s)",
			tpl.Name, strings.Join(match.MissingHeaders, ", "))
	}

	if err := s.templates.IncrementUsage(ctx, tenantID, tpl.ID); err != nil {
		// Usage accounting must not fail the import.
		log.Warn().Err(err).Str("template_id", tpl.ID.String()).Msg("Failed to count template usage")
	}

	return tpl.Mapping, &tpl.ID, nil
}

func mappingHasIdentity(mapping model.Mapping) bool {
	for _, field := range mapping {
		if field == model.FieldTitle || field == model.FieldISBN {
			return true
		}
	}
	return false
}

// processRow takes one raw row to its terminal state. Every failure mode
// is contained here; a single bad row never aborts the batch.
func (s *ImportService) processRow(ctx context.Context, tenantID uuid.UUID, raw model.RawRow, mapping model.Mapping, sourceLabel string, kind model.ImportKind, report *model.ImportReport) {
	defer func() {
		if p := recover(); p != nil {
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails, model.ErrorDetail{
				Row:      raw.Number,
				Error:    fmt.Sprintf("panic: %v", p),
				RawCells: raw.Cells,
			})
			log.Error().Int("row", raw.Number).Interface("panic", p).Msg("Row processing panicked")
		}
	}()

	row := s.normalizer.Normalize(raw, mapping, sourceLabel, kind)
	if row.Skip {
		report.Skipped++
		report.SkippedDetails = append(report.SkippedDetails, model.SkippedDetail{
			Row:    row.Number,
			Reason: row.SkipReason,
		})
		return
	}

	classification, err := s.resolver.Resolve(ctx, tenantID, row)
	if err != nil {
		s.recordRowError(report, raw, err)
		return
	}

	switch classification.Status {
	case model.StatusNew:
		if err := s.applyNew(ctx, tenantID, row); err != nil {
			s.recordRowError(report, raw, err)
			return
		}
		report.Inserted++

	case model.StatusDuplicate:
		applied, err := s.applyDuplicate(ctx, tenantID, row, classification)
		if err != nil {
			s.recordRowError(report, raw, err)
			return
		}
		report.Duplicates++
		if applied {
			report.Updated++
		}
		report.DuplicateDetails = append(report.DuplicateDetails, model.DuplicateDetail{
			Row:         row.Number,
			Title:       row.Book.Title,
			BookID:      classification.Matched.ID,
			MatchedBy:   classification.MatchedBy,
			Action:      classification.Pricing.Action,
			Differences: classification.Pricing.Differences,
		})

	case model.StatusConflict:
		report.Conflicts++
		detail := model.ConflictDetail{
			Row:            row.Number,
			Title:          row.Book.Title,
			MatchedBy:      classification.MatchedBy,
			ConflictFields: classification.ConflictFields,
			Message:        classification.Message,
		}
		if row.Book.ISBN != nil {
			detail.ISBN = *row.Book.ISBN
		}
		report.ConflictDetails = append(report.ConflictDetails, detail)
	}
}

func (s *ImportService) recordRowError(report *model.ImportReport, raw model.RawRow, err error) {
	report.Errors++
	report.ErrorDetails = append(report.ErrorDetails, model.ErrorDetail{
		Row:      raw.Number,
		Error:    err.Error(),
		RawCells: raw.Cells,
	})
	log.Error().Err(err).Int("row", raw.Number).Msg("Row processing failed")
}

// ========================================
// APPLY
// ========================================

// applyNew creates publisher (get-or-create), book, and the first pricing
// record. There is no multi-document transaction across these stores: a
// pricing failure after the book was saved triggers a compensating delete
// of the orphaned book.
func (s *ImportService) applyNew(ctx context.Context, tenantID uuid.UUID, row model.NormalizedRow) error {
	var publisherID *uuid.UUID
	if row.Publisher.Name != "" {
		pub, err := s.getOrCreatePublisher(ctx, tenantID, row.Publisher.Name)
		if err != nil {
			return err
		}
		publisherID = &pub.ID
	}

	book := &catalogModel.Book{
		TenantID:       tenantID,
		Title:          row.Book.Title,
		Author:         row.Book.Author,
		Edition:        row.Book.Edition,
		Year:           row.Book.Year,
		ISBN:           row.Book.ISBN,
		OtherCode:      row.Book.OtherCode,
		PublisherID:    publisherID,
		Classification: row.Book.Classification,
		Remarks:        row.Book.Remarks,
	}

	book, err := s.books.Create(ctx, book)
	if err != nil {
		return err
	}

	if err := s.createPricing(ctx, tenantID, book.ID, row.Pricing); err != nil {
		// Compensating action, best-effort: rollback failure is logged,
		// never retried, and the row stays an error either way.
		if delErr := s.books.Delete(ctx, tenantID, book.ID); delErr != nil {
			log.Warn().
				Err(delErr).
				Str("book_id", book.ID.String()).
				Msg("Failed to roll back book after pricing insert failure")
		}
		return fmt.Errorf("pricing insert failed for new book: %w", err)
	}

	return nil
}

// applyDuplicate applies the reconciler's decision. Returns whether a
// pricing mutation actually happened.
func (s *ImportService) applyDuplicate(ctx context.Context, tenantID uuid.UUID, row model.NormalizedRow, c *model.Classification) (bool, error) {
	switch c.Pricing.Action {
	case model.ActionAddPrice:
		if err := s.createPricing(ctx, tenantID, c.Matched.ID, row.Pricing); err != nil {
			return false, err
		}
		return true, nil

	case model.ActionUpdatePrice:
		rate := c.Pricing.Existing.Rate
		if row.Pricing.Rate != nil {
			rate = *row.Pricing.Rate
		}
		err := s.pricing.UpdateRateDiscount(ctx, tenantID, c.Pricing.Existing.ID, rate, row.Pricing.Discount)
		if err != nil {
			return false, err
		}
		return true, nil

	default: // NO_CHANGE
		return false, nil
	}
}

func (s *ImportService) createPricing(ctx context.Context, tenantID, bookID uuid.UUID, pricing model.PricingData) error {
	rate := decimal.Zero
	if pricing.Rate != nil {
		rate = *pricing.Rate
	}

	_, err := s.pricing.Create(ctx, &catalogModel.PricingRecord{
		TenantID:    tenantID,
		BookID:      bookID,
		Source:      pricing.Source,
		Rate:        rate,
		Currency:    pricing.Currency,
		Discount:    pricing.Discount,
		Stock:       pricing.Stock,
		BindingType: pricing.BindingType,
	})
	return err
}

// getOrCreatePublisher is a check-then-act get-or-create. Concurrent
// imports can race on the same new name; the store's per-tenant unique
// index turns the loser's insert into ErrPublisherExists, which is treated
// as "already exists, re-fetch".
func (s *ImportService) getOrCreatePublisher(ctx context.Context, tenantID uuid.UUID, name string) (*catalogModel.Publisher, error) {
	normalized := catalogModel.NormalizePublisherName(name)

	pub, err := s.publishers.GetByName(ctx, tenantID, normalized)
	if err != nil {
		return nil, err
	}
	if pub != nil {
		return pub, nil
	}

	pub, err = s.publishers.Create(ctx, &catalogModel.Publisher{
		TenantID: tenantID,
		Name:     normalized,
	})
	if err == catalogModel.ErrPublisherExists {
		return s.publishers.GetByName(ctx, tenantID, normalized)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("publisher_id", pub.ID.String()).
		Str("name", normalized).
		Msg("Created new publisher")
	return pub, nil
}

// ========================================
// AUDIT ARTIFACT
// ========================================

var sourceSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func sourceFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" {
		return "upload"
	}
	return base
}

// storeArtifact uploads the report JSON as the audit log. Artifact
// failures degrade the report (no artifact ref) but never fail the run;
// the import itself already happened.
func (s *ImportService) storeArtifact(ctx context.Context, tenantID uuid.UUID, report *model.ImportReport) {
	if s.artifacts == nil {
		return
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode import audit artifact")
		return
	}

	safeSource := sourceSanitizer.ReplaceAllString(report.Source, "-")
	key := fmt.Sprintf("%s/%s/import-%s-%s.json",
		s.cfg.ArtifactPrefix,
		tenantID.String(),
		safeSource,
		report.CompletedAt.Format("20060102T150405Z"),
	)

	url, err := s.artifacts.Upload(ctx, key, data, "application/json")
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to upload import audit artifact")
		return
	}

	report.ArtifactKey = key
	report.ArtifactURL = url
}
