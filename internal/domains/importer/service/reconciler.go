package service

import (
	"context"
	"fmt"

	catalogRepo "bookquote-backend/internal/domains/catalog/repository"
	"bookquote-backend/internal/domains/importer/model"

	"github.com/google/uuid"
)

// PricingReconciler decides what to do with a new price quote for a book
// that already exists: insert, update, or nothing. Rate and discount are
// the authoritative triggers; a currency difference is reported but never
// drives an update on its own.
type PricingReconciler struct {
	pricing catalogRepo.PricingRepository
}

func NewPricingReconciler(pricing catalogRepo.PricingRepository) *PricingReconciler {
	return &PricingReconciler{pricing: pricing}
}

// Reconcile looks up the existing record for (book, source) and compares
// rate and discount. Differences come back as old/new pairs for only the
// fields that actually differ.
func (r *PricingReconciler) Reconcile(ctx context.Context, tenantID, bookID uuid.UUID, pricing model.PricingData) (*model.PricingDecision, error) {
	existing, err := r.pricing.GetByBookAndSource(ctx, tenantID, bookID, pricing.Source)
	if err != nil {
		return nil, fmt.Errorf("pricing lookup failed: %w", err)
	}

	if existing == nil {
		return &model.PricingDecision{
			Action:  model.ActionAddPrice,
			Message: fmt.Sprintf("no price from source %q yet", pricing.Source),
		}, nil
	}

	diffs := make(map[string]model.FieldDiff)
	changed := false

	if pricing.Rate != nil && !pricing.Rate.Equal(existing.Rate) {
		diffs["rate"] = model.FieldDiff{Old: existing.Rate, New: *pricing.Rate}
		changed = true
	}
	if !pricing.Discount.Equal(existing.Discount) {
		diffs["discount"] = model.FieldDiff{Old: existing.Discount, New: pricing.Discount}
		changed = true
	}

	// Informational only; never a trigger.
	if pricing.Currency != "" && existing.Currency != "" && pricing.Currency != existing.Currency {
		diffs["currency"] = model.FieldDiff{Old: existing.Currency, New: pricing.Currency}
	}

	if changed {
		return &model.PricingDecision{
			Action:      model.ActionUpdatePrice,
			Existing:    existing,
			Differences: diffs,
			Message:     fmt.Sprintf("price from source %q changed", pricing.Source),
		}, nil
	}

	decision := &model.PricingDecision{
		Action:   model.ActionNoChange,
		Existing: existing,
		Message:  fmt.Sprintf("price from source %q unchanged", pricing.Source),
	}
	if len(diffs) > 0 {
		decision.Differences = diffs
	}
	return decision, nil
}
