package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/rating"
	"github.com/scentshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRatingRepository implements rating.Repository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// FindByUserAndProduct returns the single rating a user left on a product
func (r *GormRatingRepository) FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*rating.Rating, error) {
	var rt rating.Rating
	if err := r.db.WithContext(ctx).
		First(&rt, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// FindByProduct returns all ratings of a product, newest first
func (r *GormRatingRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*rating.Rating, error) {
	var ratings []*rating.Rating
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}

// Save creates or updates a rating
func (r *GormRatingRepository) Save(ctx context.Context, rt *rating.Rating) error {
	return r.db.WithContext(ctx).Save(rt).Error
}

var _ rating.Repository = (*GormRatingRepository)(nil)
