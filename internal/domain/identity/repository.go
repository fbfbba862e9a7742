package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// UserRepository persists storefront accounts
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter shared.Filter) ([]*User, int64, error)
	Save(ctx context.Context, u *User) error
}
