package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ratingapp "github.com/scentshop/backend/internal/application/rating"
	"github.com/scentshop/backend/internal/interfaces/http/dto"
)

// RatingHandler handles product rating endpoints
type RatingHandler struct {
	BaseHandler
	ratingService *ratingapp.Service
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingService *ratingapp.Service) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// ListForProduct handles GET /api/v1/products/:id/ratings
func (h *RatingHandler) ListForProduct(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	ratings, err := h.ratingService.ListForProduct(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ratings)
}

// Submit handles POST /api/v1/products/:id/ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	var req ratingapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	rating, err := h.ratingService.Submit(c.Request.Context(), userID, uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rating)
}
