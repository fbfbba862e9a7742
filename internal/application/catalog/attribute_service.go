package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/shared"
)

// AttributeService implements lookup value CRUD (admin) and the public
// lookup lists product forms and filters read from
type AttributeService struct {
	attributes catalog.AttributeRepository
}

// NewAttributeService creates an attribute service
func NewAttributeService(attributes catalog.AttributeRepository) *AttributeService {
	return &AttributeService{attributes: attributes}
}

// CreateAttributeRequest adds a lookup value under a type
type CreateAttributeRequest struct {
	Type  string `json:"type" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// UpdateAttributeRequest replaces the lookup text
type UpdateAttributeRequest struct {
	Value string `json:"value" binding:"required"`
}

// AttributeResponse is the attribute view
type AttributeResponse struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// List returns active lookup values, optionally narrowed to one type
func (s *AttributeService) List(ctx context.Context, attrType string) ([]*AttributeResponse, error) {
	if attrType != "" && !catalog.IsAttributeType(attrType) {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown attribute type")
	}

	attributes, err := s.attributes.List(ctx, attrType)
	if err != nil {
		return nil, err
	}

	responses := make([]*AttributeResponse, len(attributes))
	for i, a := range attributes {
		responses[i] = toAttributeResponse(a)
	}
	return responses, nil
}

// Create adds a lookup value; duplicate (type, value) pairs are rejected
func (s *AttributeService) Create(ctx context.Context, req CreateAttributeRequest) (*AttributeResponse, error) {
	a, err := catalog.NewAttribute(req.Type, req.Value)
	if err != nil {
		return nil, err
	}

	if _, err := s.attributes.FindByTypeAndValue(ctx, a.Type, a.Value); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "attribute value already exists for this type")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.attributes.Save(ctx, a); err != nil {
		return nil, err
	}
	return toAttributeResponse(a), nil
}

// Update replaces the lookup text; the type stays fixed
func (s *AttributeService) Update(ctx context.Context, id uuid.UUID, req UpdateAttributeRequest) (*AttributeResponse, error) {
	a, err := s.attributes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.attributes.FindByTypeAndValue(ctx, a.Type, req.Value); err == nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "attribute value already exists for this type")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := a.UpdateValue(req.Value); err != nil {
		return nil, err
	}

	if err := s.attributes.Save(ctx, a); err != nil {
		return nil, err
	}
	return toAttributeResponse(a), nil
}

// Delete deactivates a lookup value. Values still referenced by a product
// cannot be removed.
func (s *AttributeService) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.attributes.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.attributes.InUse(ctx, a)
	if err != nil {
		return err
	}
	if inUse {
		return shared.NewDomainError("ATTRIBUTE_IN_USE", "attribute is referenced by existing products")
	}

	a.Deactivate()
	return s.attributes.Save(ctx, a)
}

func toAttributeResponse(a *catalog.Attribute) *AttributeResponse {
	return &AttributeResponse{
		ID:    a.ID.String(),
		Type:  a.Type,
		Value: a.Value,
	}
}
