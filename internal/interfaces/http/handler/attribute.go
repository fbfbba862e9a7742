package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/scentshop/backend/internal/application/catalog"
	"github.com/scentshop/backend/internal/interfaces/http/dto"
)

// AttributeHandler handles lookup value endpoints
type AttributeHandler struct {
	BaseHandler
	attributeService *catalogapp.AttributeService
}

// NewAttributeHandler creates a new AttributeHandler
func NewAttributeHandler(attributeService *catalogapp.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

// List handles GET /api/v1/attributes
func (h *AttributeHandler) List(c *gin.Context) {
	attributes, err := h.attributeService.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attributes)
}

// ListByType handles GET /api/v1/attributes/:type
func (h *AttributeHandler) ListByType(c *gin.Context) {
	attributes, err := h.attributeService.List(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attributes)
}

// Create handles POST /api/v1/admin/attributes
func (h *AttributeHandler) Create(c *gin.Context) {
	var req catalogapp.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	attribute, err := h.attributeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, attribute)
}

// Update handles PUT /api/v1/admin/attributes/:id
func (h *AttributeHandler) Update(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid attribute id")
		return
	}

	var req catalogapp.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	attribute, err := h.attributeService.Update(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attribute)
}

// Delete handles DELETE /api/v1/admin/attributes/:id
func (h *AttributeHandler) Delete(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid attribute id")
		return
	}

	if err := h.attributeService.Delete(c.Request.Context(), uuid.MustParse(uri.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
