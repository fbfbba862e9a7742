package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Service implements the cart use cases. The cart stores only references;
// prices shown to the client are resolved live from the catalog and are not
// locked in until checkout.
type Service struct {
	carts    cart.Repository
	products catalog.ProductRepository
}

// NewService creates a cart service
func NewService(carts cart.Repository, products catalog.ProductRepository) *Service {
	return &Service{
		carts:    carts,
		products: products,
	}
}

// ItemResponse is a cart line enriched with live catalog data
type ItemResponse struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	VariantIndex int     `json:"variant_index"`
	Quantity     int     `json:"quantity"`
	ProductName  string  `json:"product_name,omitempty"`
	Volume       string  `json:"volume,omitempty"`
	UnitPrice    float64 `json:"unit_price"`
	LineTotal    float64 `json:"line_total"`
	// Available is false when the referenced product or variant no longer
	// exists; such lines are rejected at checkout
	Available bool `json:"available"`
}

// Response is the full cart view
type Response struct {
	ID       string         `json:"id"`
	Items    []ItemResponse `json:"items"`
	Subtotal float64        `json:"subtotal"`
}

// AddItemRequest adds a product variant to the cart
type AddItemRequest struct {
	ProductID    string `json:"product_id" binding:"required,uuid"`
	VariantIndex int    `json:"variant_index" binding:"min=0"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// SetQuantityRequest replaces a cart line's quantity
type SetQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// Get returns the user's cart, creating an empty one on first access
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Response, error) {
	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// AddItem validates the product and variant exist, then merges the line
// into the cart
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*Response, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid product id")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if _, err := product.VariantAt(req.VariantIndex); err != nil {
		return nil, err
	}

	c, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	expected := c.Version
	if err := c.AddItem(productID, req.VariantIndex, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.SaveWithLock(ctx, c, expected); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// SetQuantity replaces the quantity of an existing cart line
func (s *Service) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Response, error) {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	expected := c.Version
	if err := c.SetQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.SaveWithLock(ctx, c, expected); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// RemoveItem deletes a cart line
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*Response, error) {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	expected := c.Version
	if err := c.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.carts.SaveWithLock(ctx, c, expected); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, c)
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	expected := c.Version
	c.Clear()
	return s.carts.SaveWithLock(ctx, c, expected)
}

func (s *Service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.carts.FindByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c = cart.NewCart(userID)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// toResponse resolves each line against the live catalog. Lines whose
// product or variant vanished are kept but flagged unavailable.
func (s *Service) toResponse(ctx context.Context, c *cart.Cart) (*Response, error) {
	resp := &Response{
		ID:    c.ID.String(),
		Items: make([]ItemResponse, 0, len(c.Items)),
	}

	for _, item := range c.Items {
		line := ItemResponse{
			ID:           item.ID.String(),
			ProductID:    item.ProductID.String(),
			VariantIndex: item.VariantIndex,
			Quantity:     item.Quantity,
		}

		product, err := s.products.FindByID(ctx, item.ProductID)
		if err == nil {
			if variant, verr := product.VariantAt(item.VariantIndex); verr == nil {
				line.ProductName = product.Name
				line.Volume = variant.Volume
				line.UnitPrice = variant.Price.Float64()
				line.LineTotal = variant.Price.Mul(int64(item.Quantity)).Float64()
				line.Available = true
				resp.Subtotal += line.LineTotal
			}
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		resp.Items = append(resp.Items, line)
	}

	return resp, nil
}
