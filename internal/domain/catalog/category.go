package catalog

import (
	"strings"

	"github.com/scentshop/backend/internal/domain/shared"
)

// Category groups products for browsing and filtering
type Category struct {
	shared.BaseEntity
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category after validating its name
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "category name is required")
	}

	return &Category{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
	}, nil
}

// Rename updates the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "category name is required")
	}
	c.Name = name
	c.Touch()
	return nil
}

// UpdateDescription replaces the description text
func (c *Category) UpdateDescription(description string) {
	c.Description = description
	c.Touch()
}
