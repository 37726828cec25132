package service

import (
	"context"
	"fmt"
	"strings"

	catalogModel "bookquote-backend/internal/domains/catalog/model"
	catalogRepo "bookquote-backend/internal/domains/catalog/repository"
	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
)

// IdentityResolver classifies a normalized row against the existing
// catalog as NEW, DUPLICATE or CONFLICT.
//
// Match precedence (first matching rule wins):
//  1. isbn: a hit settles the row; a miss with isbn present means NEW,
//     it does not fall through to weaker keys
//  2. other_code, only when isbn is absent
//  3. title under exact publisher, only when neither code matched
//
// Business outcomes come back as a Classification, never as an error;
// errors mean the datastore failed.
type IdentityResolver struct {
	books      catalogRepo.BookRepository
	publishers catalogRepo.PublisherRepository
	reconciler *PricingReconciler
}

func NewIdentityResolver(
	books catalogRepo.BookRepository,
	publishers catalogRepo.PublisherRepository,
	reconciler *PricingReconciler,
) *IdentityResolver {
	return &IdentityResolver{
		books:      books,
		publishers: publishers,
		reconciler: reconciler,
	}
}

func (r *IdentityResolver) Resolve(ctx context.Context, tenantID uuid.UUID, row model.NormalizedRow) (*model.Classification, error) {
	// Rule 1: ISBN.
	if row.Book.ISBN != nil {
		existing, err := r.books.GetByISBN(ctx, tenantID, *row.Book.ISBN)
		if err != nil {
			return nil, fmt.Errorf("isbn lookup failed: %w", err)
		}
		if existing != nil {
			return r.classifyMatch(ctx, tenantID, row, existing, model.MatchByISBN)
		}
		return r.classifyNew(row), nil
	}

	// Rule 2: alternate code, only without an ISBN.
	if row.Book.OtherCode != nil {
		existing, err := r.books.GetByOtherCode(ctx, tenantID, *row.Book.OtherCode)
		if err != nil {
			return nil, fmt.Errorf("other_code lookup failed: %w", err)
		}
		if existing != nil {
			return r.classifyMatch(ctx, tenantID, row, existing, model.MatchByOtherCode)
		}
	}

	// Rule 3: title under the exact publisher.
	if row.Publisher.Name != "" && row.Book.Title != "" {
		normalized := catalogModel.NormalizePublisherName(row.Publisher.Name)
		pub, err := r.publishers.GetByName(ctx, tenantID, normalized)
		if err != nil {
			return nil, fmt.Errorf("publisher lookup failed: %w", err)
		}
		if pub != nil {
			existing, err := r.books.GetByTitleAndPublisher(ctx, tenantID, row.Book.Title, pub.ID)
			if err != nil {
				return nil, fmt.Errorf("title+publisher lookup failed: %w", err)
			}
			if existing != nil {
				return r.classifyTitlePublisherMatch(ctx, tenantID, row, existing)
			}
		}
	}

	// Rule 4: fallback, not an error.
	return r.classifyNew(row), nil
}

// classifyMatch handles a hit on an identifying code (isbn or other_code):
// matching titles mean DUPLICATE, diverging titles mean CONFLICT.
func (r *IdentityResolver) classifyMatch(
	ctx context.Context,
	tenantID uuid.UUID,
	row model.NormalizedRow,
	existing *catalogModel.Book,
	key model.MatchKey,
) (*model.Classification, error) {
	if !titlesEqual(existing.Title, row.Book.Title) {
		return &model.Classification{
			Status:    model.StatusConflict,
			Matched:   existing,
			MatchedBy: key,
			ConflictFields: map[string]model.FieldDiff{
				"title": {Old: existing.Title, New: row.Book.Title},
			},
			Message: fmt.Sprintf("%s matches an existing book with a different title", key),
		}, nil
	}

	decision, err := r.reconciler.Reconcile(ctx, tenantID, existing.ID, row.Pricing)
	if err != nil {
		return nil, err
	}

	return &model.Classification{
		Status:    model.StatusDuplicate,
		Matched:   existing,
		MatchedBy: key,
		Pricing:   decision,
		Message:   fmt.Sprintf("matched existing book by %s", key),
	}, nil
}

// classifyTitlePublisherMatch handles a title+publisher hit: a diverging
// other_code on the incoming row is a conflict, anything else is a
// duplicate.
func (r *IdentityResolver) classifyTitlePublisherMatch(
	ctx context.Context,
	tenantID uuid.UUID,
	row model.NormalizedRow,
	existing *catalogModel.Book,
) (*model.Classification, error) {
	if row.Book.OtherCode != nil && existing.OtherCode != nil && *row.Book.OtherCode != *existing.OtherCode {
		return &model.Classification{
			Status:    model.StatusConflict,
			Matched:   existing,
			MatchedBy: model.MatchByTitlePublisher,
			ConflictFields: map[string]model.FieldDiff{
				"other_code": {Old: *existing.OtherCode, New: *row.Book.OtherCode},
			},
			Message: "title and publisher match an existing book with a different code",
		}, nil
	}

	decision, err := r.reconciler.Reconcile(ctx, tenantID, existing.ID, row.Pricing)
	if err != nil {
		return nil, err
	}

	return &model.Classification{
		Status:    model.StatusDuplicate,
		Matched:   existing,
		MatchedBy: model.MatchByTitlePublisher,
		Pricing:   decision,
		Message:   "matched existing book by title and publisher",
	}, nil
}

// classifyNew builds the NEW result. A new book always needs its first
// price record, so the pricing action is fixed.
func (r *IdentityResolver) classifyNew(row model.NormalizedRow) *model.Classification {
	return &model.Classification{
		Status: model.StatusNew,
		Pricing: &model.PricingDecision{
			Action:  model.ActionAddPrice,
			Message: "new book gets its first price record",
		},
	}
}

func titlesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
