package rating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/rating"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Service implements product rating use cases
type Service struct {
	ratings  rating.Repository
	products catalog.ProductRepository
}

// NewService creates a rating service
func NewService(ratings rating.Repository, products catalog.ProductRepository) *Service {
	return &Service{
		ratings:  ratings,
		products: products,
	}
}

// SubmitRequest creates or replaces the caller's rating for a product
type SubmitRequest struct {
	Scent     int    `json:"scent" binding:"required,min=1,max=5"`
	Longevity int    `json:"longevity" binding:"required,min=1,max=5"`
	Sillage   int    `json:"sillage" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// Response is the rating view
type Response struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Scent     int       `json:"scent"`
	Longevity int       `json:"longevity"`
	Sillage   int       `json:"sillage"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Submit upserts the caller's rating: one rating per (user, product)
func (s *Service) Submit(ctx context.Context, userID, productID uuid.UUID, req SubmitRequest) (*Response, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.ratings.FindByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		if err := existing.Update(req.Scent, req.Longevity, req.Sillage, req.Comment); err != nil {
			return nil, err
		}
		if err := s.ratings.Save(ctx, existing); err != nil {
			return nil, err
		}
		return toResponse(existing), nil
	case errors.Is(err, shared.ErrNotFound):
		r, err := rating.NewRating(userID, productID, req.Scent, req.Longevity, req.Sillage, req.Comment)
		if err != nil {
			return nil, err
		}
		if err := s.ratings.Save(ctx, r); err != nil {
			return nil, err
		}
		return toResponse(r), nil
	default:
		return nil, err
	}
}

// ListForProduct returns all ratings of a product
func (s *Service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*Response, error) {
	ratings, err := s.ratings.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]*Response, len(ratings))
	for i, r := range ratings {
		responses[i] = toResponse(r)
	}
	return responses, nil
}

func toResponse(r *rating.Rating) *Response {
	return &Response{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		ProductID: r.ProductID.String(),
		Scent:     r.Scent,
		Longevity: r.Longevity,
		Sillage:   r.Sillage,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
