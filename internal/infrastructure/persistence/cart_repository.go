package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUserID returns the user's cart with its items
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&c, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Save persists the cart and reconciles its item list
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(c).Error; err != nil {
			return err
		}
		return r.reconcileItems(tx, c)
	})
}

// SaveWithLock persists the cart only if its stored version matches,
// bumping the version on success.
func (r *GormCartRepository) SaveWithLock(ctx context.Context, c *cart.Cart, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&cart.Cart{}).
			Where("id = ? AND version = ?", c.ID, expectedVersion).
			Updates(map[string]interface{}{
				"updated_at": time.Now(),
				"version":    expectedVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		c.Version = expectedVersion + 1

		return r.reconcileItems(tx, c)
	})
}

// reconcileItems deletes removed lines and upserts the rest
func (r *GormCartRepository) reconcileItems(tx *gorm.DB, c *cart.Cart) error {
	keep := make([]uuid.UUID, 0, len(c.Items))
	for _, it := range c.Items {
		keep = append(keep, it.ID)
	}

	del := tx.Where("cart_id = ?", c.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&cart.Item{}).Error; err != nil {
		return err
	}

	if len(c.Items) > 0 {
		items := c.Items
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ cart.Repository = (*GormCartRepository)(nil)
