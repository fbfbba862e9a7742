package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// ListFilter narrows order list queries
type ListFilter struct {
	shared.Filter
	UserID *uuid.UUID
	Status *Status
}

// Repository persists orders with items and timeline
type Repository interface {
	// FindByID loads an order with its items and timeline,
	// or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// List returns a page of orders plus the total count
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)

	// Create inserts a new order. When clearCartID is non-nil the cart's
	// items are deleted in the same transaction, closing the
	// checkout consistency window.
	Create(ctx context.Context, o *Order, clearCartID *uuid.UUID) error

	// SaveWithLock persists status/timeline mutations only if the stored
	// version matches, returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, o *Order, expectedVersion int) error
}
