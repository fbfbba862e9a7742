package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// RecordRepository persists the append-only payment audit log
type RecordRepository interface {
	// Create appends a new record. Records are never updated.
	Create(ctx context.Context, r *Record) error

	// FindByOrderID returns all records for an order, oldest first
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Record, error)

	// List returns a page of records plus the total count
	List(ctx context.Context, filter shared.Filter) ([]*Record, int64, error)

	// ListByUser returns a page of one user's records plus the total count
	ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Record, int64, error)
}
