package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements payment.RecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// Create appends a new record. Records are never updated.
func (r *GormPaymentRecordRepository) Create(ctx context.Context, rec *payment.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// FindByOrderID returns all records for an order, oldest first
func (r *GormPaymentRecordRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*payment.Record, error) {
	var records []*payment.Record
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// List returns a page of records plus the total count, newest first
func (r *GormPaymentRecordRepository) List(ctx context.Context, filter shared.Filter) ([]*payment.Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&payment.Record{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*payment.Record
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListByUser returns a page of one user's records plus the total count,
// newest first
func (r *GormPaymentRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*payment.Record, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&payment.Record{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*payment.Record
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

var _ payment.RecordRepository = (*GormPaymentRecordRepository)(nil)
