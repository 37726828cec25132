package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	catalogModel "bookquote-backend/internal/domains/catalog/model"
	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes. They honor the same contract as the postgres
// implementations: lookups return (nil, nil) on miss, publisher Create
// returns ErrPublisherExists on a name collision.

type fakeBookRepo struct {
	books map[uuid.UUID]*catalogModel.Book

	createErr  error
	createdIDs []uuid.UUID
	deletedIDs []uuid.UUID
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uuid.UUID]*catalogModel.Book)}
}

func (r *fakeBookRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*catalogModel.Book, error) {
	b, ok := r.books[id]
	if !ok || b.TenantID != tenantID {
		return nil, nil
	}
	return b, nil
}

func (r *fakeBookRepo) GetByISBN(_ context.Context, tenantID uuid.UUID, isbn string) (*catalogModel.Book, error) {
	for _, b := range r.books {
		if b.TenantID == tenantID && b.ISBN != nil && *b.ISBN == isbn {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookRepo) GetByOtherCode(_ context.Context, tenantID uuid.UUID, code string) (*catalogModel.Book, error) {
	for _, b := range r.books {
		if b.TenantID == tenantID && b.OtherCode != nil && *b.OtherCode == code {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookRepo) GetByTitleAndPublisher(_ context.Context, tenantID uuid.UUID, title string, publisherID uuid.UUID) (*catalogModel.Book, error) {
	for _, b := range r.books {
		if b.TenantID == tenantID &&
			b.PublisherID != nil && *b.PublisherID == publisherID &&
			strings.EqualFold(b.Title, title) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookRepo) Create(_ context.Context, book *catalogModel.Book) (*catalogModel.Book, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	stored := *book
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.books[stored.ID] = &stored
	r.createdIDs = append(r.createdIDs, stored.ID)
	return &stored, nil
}

func (r *fakeBookRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	b, ok := r.books[id]
	if !ok || b.TenantID != tenantID {
		return catalogModel.ErrBookNotFound
	}
	delete(r.books, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

type fakePublisherRepo struct {
	publishers map[uuid.UUID]*catalogModel.Publisher

	// raceOnce makes the next Create fail with ErrPublisherExists after
	// silently storing the publisher, simulating a lost insert race.
	raceOnce bool
}

func newFakePublisherRepo() *fakePublisherRepo {
	return &fakePublisherRepo{publishers: make(map[uuid.UUID]*catalogModel.Publisher)}
}

func (r *fakePublisherRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*catalogModel.Publisher, error) {
	p, ok := r.publishers[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (r *fakePublisherRepo) GetByName(_ context.Context, tenantID uuid.UUID, name string) (*catalogModel.Publisher, error) {
	for _, p := range r.publishers {
		if p.TenantID == tenantID && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePublisherRepo) Create(_ context.Context, pub *catalogModel.Publisher) (*catalogModel.Publisher, error) {
	for _, p := range r.publishers {
		if p.TenantID == pub.TenantID && p.Name == pub.Name {
			return nil, catalogModel.ErrPublisherExists
		}
	}
	stored := *pub
	stored.ID = uuid.New()
	r.publishers[stored.ID] = &stored
	if r.raceOnce {
		r.raceOnce = false
		return nil, catalogModel.ErrPublisherExists
	}
	return &stored, nil
}

// add seeds a publisher and returns it.
func (r *fakePublisherRepo) add(tenantID uuid.UUID, name string) *catalogModel.Publisher {
	p := &catalogModel.Publisher{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     catalogModel.NormalizePublisherName(name),
	}
	r.publishers[p.ID] = p
	return p
}

type fakePricingRepo struct {
	records map[uuid.UUID]*catalogModel.PricingRecord

	createErr error
	updates   int
}

func newFakePricingRepo() *fakePricingRepo {
	return &fakePricingRepo{records: make(map[uuid.UUID]*catalogModel.PricingRecord)}
}

func (r *fakePricingRepo) GetByBookAndSource(_ context.Context, tenantID, bookID uuid.UUID, source string) (*catalogModel.PricingRecord, error) {
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.BookID == bookID && rec.Source == source {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakePricingRepo) ListByBook(_ context.Context, tenantID, bookID uuid.UUID) ([]*catalogModel.PricingRecord, error) {
	var out []*catalogModel.PricingRecord
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.BookID == bookID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakePricingRepo) Create(_ context.Context, rec *catalogModel.PricingRecord) (*catalogModel.PricingRecord, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	stored := *rec
	stored.ID = uuid.New()
	stored.LastUpdated = time.Now()
	r.records[stored.ID] = &stored
	return &stored, nil
}

func (r *fakePricingRepo) UpdateRateDiscount(_ context.Context, tenantID, id uuid.UUID, rate, discount decimal.Decimal) error {
	rec, ok := r.records[id]
	if !ok || rec.TenantID != tenantID {
		return catalogModel.ErrPricingNotFound
	}
	rec.Rate = rate
	rec.Discount = discount
	rec.LastUpdated = time.Now()
	r.updates++
	return nil
}

// seed inserts a pricing record for tests.
func (r *fakePricingRepo) seed(tenantID, bookID uuid.UUID, source, rate, discount, currency string) *catalogModel.PricingRecord {
	rec := &catalogModel.PricingRecord{
		ID:       uuid.New(),
		TenantID: tenantID,
		BookID:   bookID,
		Source:   source,
		Rate:     decimal.RequireFromString(rate),
		Discount: decimal.RequireFromString(discount),
		Currency: currency,
	}
	r.records[rec.ID] = rec
	return rec
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*model.ImportTemplate
	usage     map[uuid.UUID]int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates: make(map[uuid.UUID]*model.ImportTemplate),
		usage:     make(map[uuid.UUID]int),
	}
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*model.ImportTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	return t, nil
}

func (r *fakeTemplateRepo) GetByFingerprint(_ context.Context, tenantID uuid.UUID, fingerprint string) (*model.ImportTemplate, error) {
	for _, t := range r.templates {
		if t.TenantID == tenantID && t.Fingerprint == fingerprint {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*model.ImportTemplate, error) {
	var out []*model.ImportTemplate
	for _, t := range r.templates {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, tpl *model.ImportTemplate) (*model.ImportTemplate, error) {
	stored := *tpl
	stored.ID = uuid.New()
	r.templates[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	t, ok := r.templates[id]
	if !ok || t.TenantID != tenantID {
		return fmt.Errorf("template not found")
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeTemplateRepo) IncrementUsage(_ context.Context, tenantID, id uuid.UUID) error {
	t, ok := r.templates[id]
	if !ok || t.TenantID != tenantID {
		return fmt.Errorf("template not found")
	}
	t.UsageCount++
	r.usage[id]++
	return nil
}

type fakeArtifactStore struct {
	uploads map[string][]byte
	err     error
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{uploads: make(map[string][]byte)}
}

func (s *fakeArtifactStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads[key] = data
	return "minio://test-bucket/" + key, nil
}
