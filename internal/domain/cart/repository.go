package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists carts with their items
type Repository interface {
	// FindByUserID returns the user's cart or shared.ErrNotFound
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart and reconciles its item list
	Save(ctx context.Context, c *Cart) error

	// SaveWithLock persists the cart only if its stored version matches,
	// guarding concurrent read-modify-write on the same cart
	SaveWithLock(ctx context.Context, c *Cart, expectedVersion int) error
}
