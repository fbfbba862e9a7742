package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/shared"
)

// CategoryService implements category CRUD (admin)
type CategoryService struct {
	categories catalog.CategoryRepository
}

// NewCategoryService creates a category service
func NewCategoryService(categories catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CategoryResponse is the category view
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Create adds a category; duplicate names are rejected
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	if _, err := s.categories.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "category name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Update renames a category and replaces its description
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.categories.FindByName(ctx, req.Name); err == nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "category name already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := c.Rename(req.Name); err != nil {
		return nil, err
	}
	c.UpdateDescription(req.Description)

	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List returns all categories
func (s *CategoryService) List(ctx context.Context) ([]*CategoryResponse, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = toCategoryResponse(c)
	}
	return responses, nil
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}

func toCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
	}
}
