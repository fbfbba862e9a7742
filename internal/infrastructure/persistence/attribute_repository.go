package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// attributeProductColumns maps each lookup type to the products column
// that stores its value
var attributeProductColumns = map[string]string{
	catalog.AttributeBrand:         "brand",
	catalog.AttributeGender:        "gender",
	catalog.AttributeOrigin:        "origin",
	catalog.AttributeConcentration: "concentration",
	catalog.AttributePerfumer:      "perfumer",
	catalog.AttributeScentGroup:    "scent_group",
}

// GormAttributeRepository implements catalog.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// FindByID returns an attribute by its ID
func (r *GormAttributeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Attribute, error) {
	var a catalog.Attribute
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByTypeAndValue returns the attribute with the exact (type, value) pair
func (r *GormAttributeRepository) FindByTypeAndValue(ctx context.Context, attrType, value string) (*catalog.Attribute, error) {
	var a catalog.Attribute
	if err := r.db.WithContext(ctx).
		First(&a, "type = ? AND value = ?", attrType, value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns active attributes sorted by value; an empty type returns
// all types
func (r *GormAttributeRepository) List(ctx context.Context, attrType string) ([]*catalog.Attribute, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if attrType != "" {
		query = query.Where("type = ?", attrType)
	}

	var attributes []*catalog.Attribute
	if err := query.Order("value ASC").Find(&attributes).Error; err != nil {
		return nil, err
	}
	return attributes, nil
}

// Save creates or updates an attribute
func (r *GormAttributeRepository) Save(ctx context.Context, a *catalog.Attribute) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// InUse reports whether any product still references the attribute's value
func (r *GormAttributeRepository) InUse(ctx context.Context, a *catalog.Attribute) (bool, error) {
	column, ok := attributeProductColumns[a.Type]
	if !ok {
		return false, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where(column+" = ?", a.Value).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ catalog.AttributeRepository = (*GormAttributeRepository)(nil)
