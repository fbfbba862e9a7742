package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// ProductFilter narrows product list queries
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	Brand      string
	Gender     string
}

// ProductRepository persists products with their variant lists
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttributeRepository persists typed lookup values
type AttributeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Attribute, error)
	FindByTypeAndValue(ctx context.Context, attrType, value string) (*Attribute, error)

	// List returns active attributes sorted by value; an empty type
	// returns all types
	List(ctx context.Context, attrType string) ([]*Attribute, error)

	Save(ctx context.Context, attribute *Attribute) error

	// InUse reports whether any product still references the attribute's
	// value through the matching product field
	InUse(ctx context.Context, attribute *Attribute) (bool, error)
}
