package rating

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Rating is one user's review of one product, scored on three 1-5 axes.
// At most one rating exists per (user, product) pair; resubmitting replaces it.
type Rating struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_product" json:"product_id"`
	Scent     int       `gorm:"not null" json:"scent"`
	Longevity int       `gorm:"not null" json:"longevity"`
	Sillage   int       `gorm:"not null" json:"sillage"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
}

// TableName returns the table name for GORM
func (Rating) TableName() string {
	return "ratings"
}

// NewRating validates the three score axes
func NewRating(userID, productID uuid.UUID, scent, longevity, sillage int, comment string) (*Rating, error) {
	for _, score := range []int{scent, longevity, sillage} {
		if score < 1 || score > 5 {
			return nil, shared.NewDomainError("INVALID_INPUT", "scores must be between 1 and 5")
		}
	}

	return &Rating{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Scent:      scent,
		Longevity:  longevity,
		Sillage:    sillage,
		Comment:    comment,
	}, nil
}

// Update replaces the scores and comment of an existing rating
func (r *Rating) Update(scent, longevity, sillage int, comment string) error {
	for _, score := range []int{scent, longevity, sillage} {
		if score < 1 || score > 5 {
			return shared.NewDomainError("INVALID_INPUT", "scores must be between 1 and 5")
		}
	}
	r.Scent = scent
	r.Longevity = longevity
	r.Sillage = sillage
	r.Comment = comment
	r.Touch()
	return nil
}

// Repository persists ratings
type Repository interface {
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*Rating, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*Rating, error)
	Save(ctx context.Context, r *Rating) error
}
