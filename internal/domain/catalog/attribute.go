package catalog

import (
	"strings"

	"github.com/scentshop/backend/internal/domain/shared"
)

// Attribute types recognized for perfume lookup values
const (
	AttributeBrand         = "brand"
	AttributeGender        = "gender"
	AttributeOrigin        = "origin"
	AttributeConcentration = "concentration"
	AttributePerfumer      = "perfumer"
	AttributeScentGroup    = "scent_group"
)

// AttributeTypes is the closed set of lookup value types
var AttributeTypes = []string{
	AttributeBrand,
	AttributeGender,
	AttributeOrigin,
	AttributeConcentration,
	AttributePerfumer,
	AttributeScentGroup,
}

// Attribute is a typed lookup value (a brand name, a concentration level)
// maintained by admins and offered to product forms and filters. Values are
// unique per type. Deletion is soft so historical products keep their text.
type Attribute struct {
	shared.BaseEntity
	Type   string `gorm:"type:varchar(30);not null;uniqueIndex:idx_attribute_type_value" json:"type"`
	Value  string `gorm:"type:varchar(100);not null;uniqueIndex:idx_attribute_type_value" json:"value"`
	Active bool   `gorm:"not null;default:true" json:"active"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// IsAttributeType reports whether the given string is a known lookup type
func IsAttributeType(attrType string) bool {
	for _, t := range AttributeTypes {
		if t == attrType {
			return true
		}
	}
	return false
}

// NewAttribute creates an active lookup value after validating its type
func NewAttribute(attrType, value string) (*Attribute, error) {
	if !IsAttributeType(attrType) {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown attribute type")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "attribute value is required")
	}

	return &Attribute{
		BaseEntity: shared.NewBaseEntity(),
		Type:       attrType,
		Value:      value,
		Active:     true,
	}, nil
}

// UpdateValue replaces the lookup text. The type is immutable; a value that
// belongs under a different type is a new attribute.
func (a *Attribute) UpdateValue(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return shared.NewDomainError("INVALID_INPUT", "attribute value is required")
	}
	a.Value = value
	a.Touch()
	return nil
}

// Deactivate soft-deletes the attribute. It disappears from lookups but
// stays addressable by id.
func (a *Attribute) Deactivate() {
	a.Active = false
	a.Touch()
}
