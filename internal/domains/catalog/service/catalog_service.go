package service

import (
	"context"
	"fmt"

	"bookquote-backend/internal/domains/catalog/model"
	"bookquote-backend/internal/domains/catalog/repository"
	"bookquote-backend/pkg/isbn"

	"github.com/google/uuid"
)

// CatalogService is the read surface over the imported catalog.
type CatalogService struct {
	books      repository.BookRepository
	publishers repository.PublisherRepository
	pricing    repository.PricingRepository
}

func NewCatalogService(
	books repository.BookRepository,
	publishers repository.PublisherRepository,
	pricing repository.PricingRepository,
) *CatalogService {
	return &CatalogService{
		books:      books,
		publishers: publishers,
		pricing:    pricing,
	}
}

func (s *CatalogService) GetBook(ctx context.Context, tenantID, id uuid.UUID) (*model.Book, error) {
	book, err := s.books.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}
	return book, nil
}

// LookupByISBN normalizes the query the same way the import pipeline does,
// so a lookup finds what an import stored.
func (s *CatalogService) LookupByISBN(ctx context.Context, tenantID uuid.UUID, raw string) (*model.Book, error) {
	cleaned := isbn.Clean(raw)
	if !isbn.IsValid(cleaned) {
		return nil, fmt.Errorf("invalid ISBN %q", raw)
	}

	book, err := s.books.GetByISBN(ctx, tenantID, cleaned)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}
	return book, nil
}

// ListPricing returns all per-source pricing records of a book.
func (s *CatalogService) ListPricing(ctx context.Context, tenantID, bookID uuid.UUID) ([]*model.PricingRecord, error) {
	book, err := s.books.GetByID(ctx, tenantID, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, model.ErrBookNotFound
	}
	return s.pricing.ListByBook(ctx, tenantID, bookID)
}

func (s *CatalogService) GetPublisher(ctx context.Context, tenantID, id uuid.UUID) (*model.Publisher, error) {
	pub, err := s.publishers.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, fmt.Errorf("publisher %s not found", id)
	}
	return pub, nil
}
