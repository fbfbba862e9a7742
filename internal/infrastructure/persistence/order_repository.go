package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its items and timeline
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns a page of orders plus the total count
func (r *GormOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*order.Order
	if err := query.
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// Create inserts a new order with its items and timeline. When clearCartID
// is non-nil the cart's items are deleted in the same transaction, so a
// failed insert leaves the cart intact.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order, clearCartID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		if clearCartID != nil {
			if err := tx.Where("cart_id = ?", *clearCartID).Delete(&cart.Item{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveWithLock persists status mutations with an optimistic version guard
// and appends any new timeline entries. Returns shared.ErrConcurrencyConflict
// if the stored version no longer matches.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":         o.Status,
				"payment_status": o.PaymentStatus,
				"paid_at":        o.PaidAt,
				"cancelled_at":   o.CancelledAt,
				"updated_at":     time.Now(),
				"version":        expectedVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		o.Version = expectedVersion + 1

		// Timeline entries carry pre-generated IDs; existing rows are left alone
		if len(o.Timeline) > 0 {
			entries := o.Timeline
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ order.Repository = (*GormOrderRepository)(nil)
