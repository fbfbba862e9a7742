package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Gender values recognized for perfume products
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderUnisex = "unisex"
)

// Variant is a purchasable configuration of a product (a bottle size with
// its own price). Variants are addressed by their position in the product's
// variant list, not by a stable id.
type Variant struct {
	shared.BaseEntity
	ProductID uuid.UUID         `gorm:"type:uuid;index;not null" json:"product_id"`
	Position  int               `gorm:"not null" json:"position"`
	Volume    string            `gorm:"type:varchar(50);not null" json:"volume"`
	Price     valueobject.Money `gorm:"type:decimal(20,2)" json:"price"`
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "product_variants"
}

// Product is a catalog item with an ordered variant list and
// perfume-specific attributes.
type Product struct {
	shared.BaseAggregateRoot
	Name          string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Images        pq.StringArray `gorm:"type:text[]" json:"images"`
	CategoryID    *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	Brand         string         `gorm:"type:varchar(100);index" json:"brand"`
	Gender        string         `gorm:"type:varchar(20);index" json:"gender"`
	Origin        string         `gorm:"type:varchar(100)" json:"origin"`
	Concentration string         `gorm:"type:varchar(50)" json:"concentration"`
	Perfumer      string         `gorm:"type:varchar(100)" json:"perfumer"`
	ScentGroup    string         `gorm:"type:varchar(100)" json:"scent_group"`

	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// VariantInput describes a variant when creating or replacing the list
type VariantInput struct {
	Volume string
	Price  decimal.Decimal
}

// NewProduct creates a product with its ordered variant list
func NewProduct(name string, variants []VariantInput) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "product name is required")
	}
	if len(variants) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "product needs at least one variant")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}
	if err := p.ReplaceVariants(variants); err != nil {
		return nil, err
	}
	return p, nil
}

// ReplaceVariants swaps the full variant list, reassigning positions.
// Existing cart lines referencing removed positions become stale and are
// rejected at checkout.
func (p *Product) ReplaceVariants(variants []VariantInput) error {
	if len(variants) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "product needs at least one variant")
	}

	list := make([]Variant, 0, len(variants))
	for i, v := range variants {
		if strings.TrimSpace(v.Volume) == "" {
			return shared.NewDomainError("INVALID_INPUT", "variant volume is required")
		}
		if v.Price.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "variant price cannot be negative")
		}
		list = append(list, Variant{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  p.ID,
			Position:   i,
			Volume:     strings.TrimSpace(v.Volume),
			Price:      valueobject.NewMoneyVND(v.Price),
		})
	}

	p.Variants = list
	p.Touch()
	return nil
}

// VariantAt returns the variant at the given position.
// Returns VARIANT_NOT_FOUND when the index is out of range, which happens
// when the product was edited after a cart line was added.
func (p *Product) VariantAt(index int) (*Variant, error) {
	if index < 0 || index >= len(p.Variants) {
		return nil, shared.NewDomainError("VARIANT_NOT_FOUND", "product variant does not exist")
	}
	return &p.Variants[index], nil
}

// UpdateDetails updates the descriptive fields of the product
func (p *Product) UpdateDetails(name, description, brand, gender, origin, concentration, perfumer, scentGroup string, images []string, categoryID *uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "product name is required")
	}
	if gender != "" && gender != GenderMale && gender != GenderFemale && gender != GenderUnisex {
		return shared.NewDomainError("INVALID_INPUT", "unknown gender value")
	}

	p.Name = name
	p.Description = description
	p.Brand = brand
	p.Gender = gender
	p.Origin = origin
	p.Concentration = concentration
	p.Perfumer = perfumer
	p.ScentGroup = scentGroup
	p.Images = images
	p.CategoryID = categoryID
	p.Touch()
	return nil
}
