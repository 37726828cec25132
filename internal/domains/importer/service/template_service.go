package service

import (
	"context"
	"fmt"
	"time"

	"bookquote-backend/internal/config"
	"bookquote-backend/internal/domains/importer/model"
	"bookquote-backend/internal/domains/importer/repository"
	"bookquote-backend/pkg/cache"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TemplateService manages saved header mappings. Fingerprint lookups run on
// every upload validation, so they sit behind the cache.
type TemplateService struct {
	templates repository.TemplateRepository
	cache     cache.Cache
	ttl       time.Duration
}

func NewTemplateService(templates repository.TemplateRepository, c cache.Cache, cfg config.ImportConfig) *TemplateService {
	return &TemplateService{
		templates: templates,
		cache:     c,
		ttl:       time.Duration(cfg.TemplateCacheMinutes) * time.Minute,
	}
}

func templateCacheKey(tenantID uuid.UUID, fingerprint string) string {
	return fmt.Sprintf("import:tpl:%s:%s", tenantID, fingerprint)
}

// Create saves a new template. The fingerprint is derived from the expected
// headers, never taken from the client.
func (s *TemplateService) Create(ctx context.Context, tenantID uuid.UUID, req model.CreateTemplateRequest) (*model.ImportTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tpl := &model.ImportTemplate{
		TenantID:        tenantID,
		Name:            req.Name,
		Mapping:         req.Mapping,
		ExpectedHeaders: req.ExpectedHeaders,
		Fingerprint:     model.HeaderFingerprint(req.ExpectedHeaders),
	}

	tpl, err := s.templates.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, tpl.Fingerprint)

	log.Info().
		Str("template_id", tpl.ID.String()).
		Str("name", tpl.Name).
		Msg("Created import template")
	return tpl, nil
}

func (s *TemplateService) List(ctx context.Context, tenantID uuid.UUID) ([]*model.ImportTemplate, error) {
	return s.templates.ListByTenant(ctx, tenantID)
}

func (s *TemplateService) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.ImportTemplate, error) {
	tpl, err := s.templates.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("import template %s not found", id)
	}
	return tpl, nil
}

func (s *TemplateService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tpl, err := s.templates.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if tpl == nil {
		return fmt.Errorf("import template %s not found", id)
	}

	if err := s.templates.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.invalidate(ctx, tenantID, tpl.Fingerprint)
	return nil
}

// FindByFingerprint looks up a template by header fingerprint, cache-aside.
// Cache failures degrade to the datastore.
func (s *TemplateService) FindByFingerprint(ctx context.Context, tenantID uuid.UUID, fingerprint string) (*model.ImportTemplate, error) {
	key := templateCacheKey(tenantID, fingerprint)

	if s.cache != nil {
		var cached model.ImportTemplate
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Template cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	tpl, err := s.templates.GetByFingerprint(ctx, tenantID, fingerprint)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, tpl, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Template cache write failed")
		}
	}
	return tpl, nil
}

func (s *TemplateService) invalidate(ctx context.Context, tenantID uuid.UUID, fingerprint string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, templateCacheKey(tenantID, fingerprint)); err != nil {
		log.Warn().Err(err).Msg("Template cache invalidation failed")
	}
}
