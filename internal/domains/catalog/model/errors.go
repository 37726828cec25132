package model

import (
	"errors"
	"fmt"
)

var (
	// ErrPublisherExists signals the per-tenant unique name constraint fired.
	// Import callers treat this as "already created by a concurrent run" and
	// re-fetch instead of failing.
	ErrPublisherExists = errors.New("publisher already exists")

	ErrBookNotFound    = errors.New("book not found")
	ErrPricingNotFound = errors.New("pricing record not found")
)

func NewCreateBookError(err error) error {
	return fmt.Errorf("failed to create book: %w", err)
}

func NewCreatePricingError(err error) error {
	return fmt.Errorf("failed to create pricing record: %w", err)
}
