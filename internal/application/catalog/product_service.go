package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductService implements catalog product use cases
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
}

// NewProductService creates a product service
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryRepository) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
	}
}

// VariantRequest is one purchasable configuration
type VariantRequest struct {
	Volume string  `json:"volume" binding:"required"`
	Price  float64 `json:"price" binding:"required,gt=0"`
}

// CreateProductRequest creates a catalog product
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Images        []string         `json:"images"`
	CategoryID    string           `json:"category_id" binding:"omitempty,uuid"`
	Brand         string           `json:"brand"`
	Gender        string           `json:"gender" binding:"omitempty,oneof=male female unisex"`
	Origin        string           `json:"origin"`
	Concentration string           `json:"concentration"`
	Perfumer      string           `json:"perfumer"`
	ScentGroup    string           `json:"scent_group"`
	Variants      []VariantRequest `json:"variants" binding:"required,min=1,dive"`
}

// UpdateProductRequest replaces the product's details and variant list
type UpdateProductRequest = CreateProductRequest

// ListProductsRequest filters the product list
type ListProductsRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Brand      string `form:"brand"`
	Gender     string `form:"gender" binding:"omitempty,oneof=male female unisex"`
}

// VariantResponse is a variant view, addressed by its list position
type VariantResponse struct {
	Index  int     `json:"index"`
	Volume string  `json:"volume"`
	Price  float64 `json:"price"`
}

// ProductResponse is the product view
type ProductResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Images        []string          `json:"images,omitempty"`
	CategoryID    string            `json:"category_id,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Gender        string            `json:"gender,omitempty"`
	Origin        string            `json:"origin,omitempty"`
	Concentration string            `json:"concentration,omitempty"`
	Perfumer      string            `json:"perfumer,omitempty"`
	ScentGroup    string            `json:"scent_group,omitempty"`
	Variants      []VariantResponse `json:"variants"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Create adds a product to the catalog (admin)
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	p, err := catalog.NewProduct(req.Name, toVariantInputs(req.Variants))
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateDetails(req.Name, req.Description, req.Brand, req.Gender,
		req.Origin, req.Concentration, req.Perfumer, req.ScentGroup, req.Images, categoryID); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Update replaces a product's details and variant list (admin).
// Cart lines referencing removed variant positions become stale and are
// rejected at checkout.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateDetails(req.Name, req.Description, req.Brand, req.Gender,
		req.Origin, req.Concentration, req.Perfumer, req.ScentGroup, req.Images, categoryID); err != nil {
		return nil, err
	}

	if err := p.ReplaceVariants(toVariantInputs(req.Variants)); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List returns a filtered product page
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) ([]*ProductResponse, int64, error) {
	filter := catalog.ProductFilter{Filter: shared.NewFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	filter.Brand = req.Brand
	filter.Gender = req.Gender
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "invalid category id")
		}
		filter.CategoryID = &id
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = toProductResponse(p)
	}
	return responses, total, nil
}

// Delete removes a product (admin)
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *ProductService) resolveCategory(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid category id")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return &id, nil
}

func toVariantInputs(reqs []VariantRequest) []catalog.VariantInput {
	inputs := make([]catalog.VariantInput, len(reqs))
	for i, v := range reqs {
		inputs[i] = catalog.VariantInput{
			Volume: v.Volume,
			Price:  decimal.NewFromFloat(v.Price),
		}
	}
	return inputs
}

func toProductResponse(p *catalog.Product) *ProductResponse {
	variants := make([]VariantResponse, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = VariantResponse{
			Index:  v.Position,
			Volume: v.Volume,
			Price:  v.Price.Float64(),
		}
	}

	resp := &ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Images:        p.Images,
		Brand:         p.Brand,
		Gender:        p.Gender,
		Origin:        p.Origin,
		Concentration: p.Concentration,
		Perfumer:      p.Perfumer,
		ScentGroup:    p.ScentGroup,
		Variants:      variants,
		CreatedAt:     p.CreatedAt,
	}
	if p.CategoryID != nil {
		resp.CategoryID = p.CategoryID.String()
	}
	return resp
}
