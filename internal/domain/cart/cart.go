package cart

import (
	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Item is a cart line referencing a product variant by position.
// The cart stores no price; prices are resolved live and only locked in
// when an order is created.
type Item struct {
	shared.BaseEntity
	CartID       uuid.UUID `gorm:"type:uuid;index;not null" json:"cart_id"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	VariantIndex int       `gorm:"not null" json:"variant_index"`
	Quantity     int       `gorm:"not null" json:"quantity"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "cart_items"
}

// Cart is the per-user mutable list of line items. One cart per user,
// created lazily on first access and cleared (not deleted) at checkout.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items  []Item    `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
	}
}

// AddItem merges the quantity into an existing line with the same
// (product, variant index) pair, or appends a new line.
func (c *Cart) AddItem(productID uuid.UUID, variantIndex, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "quantity must be at least 1")
	}
	if variantIndex < 0 {
		return shared.NewDomainError("INVALID_INPUT", "variant index cannot be negative")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantIndex == variantIndex {
			c.Items[i].Quantity += quantity
			c.Items[i].Touch()
			c.Touch()
			return nil
		}
	}

	c.Items = append(c.Items, Item{
		BaseEntity:   shared.NewBaseEntity(),
		CartID:       c.ID,
		ProductID:    productID,
		VariantIndex: variantIndex,
		Quantity:     quantity,
	})
	c.Touch()
	return nil
}

// SetQuantity replaces the quantity of an existing line
func (c *Cart) SetQuantity(itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "quantity must be at least 1")
	}

	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.Items[i].Touch()
			c.Touch()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "cart item not found")
}

// RemoveItem deletes a line from the cart
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "cart item not found")
}

// Clear empties the cart. The cart row itself survives checkout.
func (c *Cart) Clear() {
	c.Items = nil
	c.Touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
