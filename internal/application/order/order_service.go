package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Service implements the order use cases: checkout, lifecycle transitions
// and payment-URL retry.
type Service struct {
	orders   order.Repository
	carts    cart.Repository
	products catalog.ProductRepository
	gateway  payment.Gateway
	events   shared.EventPublisher
}

// NewService creates an order service. The event publisher is optional.
func NewService(
	orders order.Repository,
	carts cart.Repository,
	products catalog.ProductRepository,
	gateway payment.Gateway,
	events shared.EventPublisher,
) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		gateway:  gateway,
		events:   events,
	}
}

// ShippingRequest carries the checkout address
type ShippingRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required,vn_phone"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city"`
	District string `json:"district"`
	Ward     string `json:"ward"`
}

// CheckoutRequest creates an order from the user's cart
type CheckoutRequest struct {
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cod vnpay"`
	Shipping      ShippingRequest `json:"shipping" binding:"required"`
}

// ItemResponse is an immutable order line snapshot
type ItemResponse struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	VariantVolume string  `json:"variant_volume"`
	VariantPrice  float64 `json:"variant_price"`
	Quantity      int     `json:"quantity"`
	LineTotal     float64 `json:"line_total"`
}

// TimelineResponse is one history entry
type TimelineResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Response is the order view returned to clients
type Response struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	Items         []ItemResponse        `json:"items"`
	TotalAmount   float64               `json:"total_amount"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	Shipping      order.ShippingAddress `json:"shipping"`
	Timeline      []TimelineResponse    `json:"timeline"`
	CreatedAt     time.Time             `json:"created_at"`
}

// CheckoutResponse is the order plus the gateway redirect URL when paying
// through VNPay
type CheckoutResponse struct {
	Order      *Response `json:"order"`
	PaymentURL string    `json:"payment_url,omitempty"`
}

// UpdateStatusRequest is the admin status transition input
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ListRequest pages through orders
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// Checkout converts the user's cart into an immutable order.
// The order insert and the cart clear run in one transaction; the payment
// URL is built afterwards, so a URL failure leaves a committed
// waiting_payment order the user can retry.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest, clientIP string) (*CheckoutResponse, error) {
	method := order.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "payment method must be cod or vnpay")
	}

	c, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("EMPTY_CART", "cart is empty")
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "cart is empty")
	}

	items := make([]*order.Item, 0, len(c.Items))
	for _, line := range c.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("VARIANT_NOT_FOUND", "product no longer exists")
			}
			return nil, err
		}
		variant, err := product.VariantAt(line.VariantIndex)
		if err != nil {
			return nil, err
		}

		item, err := order.NewItem(product.ID, product.Name, variant.Volume, variant.Price, line.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	shipping := order.ShippingAddress{
		FullName: req.Shipping.FullName,
		Phone:    req.Shipping.Phone,
		Address:  req.Shipping.Address,
		City:     req.Shipping.City,
		District: req.Shipping.District,
		Ward:     req.Shipping.Ward,
	}

	o, err := order.NewOrder(userID, items, method, shipping)
	if err != nil {
		return nil, err
	}

	cartID := c.ID
	if err := s.orders.Create(ctx, o, &cartID); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	resp := &CheckoutResponse{Order: toResponse(o)}

	if method == order.MethodVNPay {
		url, err := s.gateway.BuildPaymentURL(ctx, payment.PaymentURLRequest{
			OrderID:   o.ID,
			Amount:    o.TotalAmount,
			OrderInfo: fmt.Sprintf("Thanh toan don hang %s", o.ID),
			ClientIP:  clientIP,
		})
		if err != nil {
			// The order is committed and the cart cleared; the caller can
			// request a fresh URL through RetryPayment.
			return nil, shared.NewDomainError("PAYMENT_URL_ERROR", "failed to build payment URL")
		}
		resp.PaymentURL = url
	}

	return resp, nil
}

// GetByID returns an order visible to the caller: owners see their own,
// admins see all
func (s *Service) GetByID(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*Response, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return toResponse(o), nil
}

// ListMine returns the caller's orders, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, req ListRequest) ([]*Response, int64, error) {
	filter := buildFilter(req)
	filter.UserID = &userID

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(orders), total, nil
}

// ListAll returns every order, optionally filtered by status (admin)
func (s *Service) ListAll(ctx context.Context, req ListRequest) ([]*Response, int64, error) {
	orders, total, err := s.orders.List(ctx, buildFilter(req))
	if err != nil {
		return nil, 0, err
	}
	return toResponses(orders), total, nil
}

// UpdateStatus applies an admin transition with validation and a timeline
// entry
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*Response, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	expected := o.Version
	if err := o.TransitionTo(order.Status(req.Status), req.Note); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o, expected); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	return toResponse(o), nil
}

// Cancel lets a user cancel their own order while it is still cancellable
func (s *Service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*Response, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrNotFound
	}

	expected := o.Version
	if err := o.Cancel("Cancelled by customer"); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o, expected); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	return toResponse(o), nil
}

// RetryPayment issues a fresh gateway URL for an order still waiting for
// payment. The URL is always rebuilt from the persisted amount.
func (s *Service) RetryPayment(ctx context.Context, userID, orderID uuid.UUID, clientIP string) (string, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.UserID != userID {
		return "", shared.ErrNotFound
	}
	if err := o.EnsureRetryable(); err != nil {
		return "", err
	}

	url, err := s.gateway.BuildPaymentURL(ctx, payment.PaymentURLRequest{
		OrderID:   o.ID,
		Amount:    o.TotalAmount,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %s", o.ID),
		ClientIP:  clientIP,
	})
	if err != nil {
		return "", shared.NewDomainError("PAYMENT_URL_ERROR", "failed to build payment URL")
	}
	return url, nil
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	// Best effort: event delivery never fails the business operation
	_ = s.events.Publish(ctx, o.DomainEvents()...)
	o.ClearDomainEvents()
}

func buildFilter(req ListRequest) order.ListFilter {
	filter := order.ListFilter{Filter: shared.NewFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.Status != "" {
		status := order.Status(req.Status)
		filter.Status = &status
	}
	return filter
}

func toResponse(o *order.Order) *Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ProductID:     it.ProductID.String(),
			ProductName:   it.ProductName,
			VariantVolume: it.VariantVolume,
			VariantPrice:  it.VariantPrice.Float64(),
			Quantity:      it.Quantity,
			LineTotal:     it.LineTotal.Float64(),
		})
	}

	timeline := make([]TimelineResponse, 0, len(o.Timeline))
	for _, entry := range o.Timeline {
		timeline = append(timeline, TimelineResponse{
			Status:    string(entry.Status),
			Note:      entry.Note,
			Timestamp: entry.CreatedAt,
		})
	}

	return &Response{
		ID:            o.ID.String(),
		UserID:        o.UserID.String(),
		Items:         items,
		TotalAmount:   o.TotalAmount.Float64(),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Shipping:      o.Shipping,
		Timeline:      timeline,
		CreatedAt:     o.CreatedAt,
	}
}

func toResponses(orders []*order.Order) []*Response {
	responses := make([]*Response, len(orders))
	for i, o := range orders {
		responses[i] = toResponse(o)
	}
	return responses
}
