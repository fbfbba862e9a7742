package order

import (
	"github.com/scentshop/backend/internal/domain/shared"
)

// Event types published by the order aggregate
const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderCancelled     = "order.cancelled"
	EventOrderStatusChanged = "order.status_changed"
)

const aggregateType = "order"

// CreatedEvent is published when a checkout persists a new order
type CreatedEvent struct {
	shared.BaseDomainEvent
	UserID        string  `json:"user_id"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
}

// NewCreatedEvent builds a CreatedEvent from the order
func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, o.ID, aggregateType),
		UserID:          o.UserID.String(),
		TotalAmount:     o.TotalAmount.Float64(),
		PaymentMethod:   string(o.PaymentMethod),
		Status:          string(o.Status),
	}
}

// PaidEvent is published when the gateway confirms payment
type PaidEvent struct {
	shared.BaseDomainEvent
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
}

// NewPaidEvent builds a PaidEvent from the order
func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderPaid, o.ID, aggregateType),
		UserID:          o.UserID.String(),
		TotalAmount:     o.TotalAmount.Float64(),
	}
}

// CancelledEvent is published when an order is cancelled, including
// payment-failure cancellations
type CancelledEvent struct {
	shared.BaseDomainEvent
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// NewCancelledEvent builds a CancelledEvent from the order
func NewCancelledEvent(o *Order, reason string) CancelledEvent {
	return CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCancelled, o.ID, aggregateType),
		UserID:          o.UserID.String(),
		Reason:          reason,
	}
}

// StatusChangedEvent is published on admin-driven transitions
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	Status string `json:"status"`
}

// NewStatusChangedEvent builds a StatusChangedEvent from the order
func NewStatusChangedEvent(o *Order) StatusChangedEvent {
	return StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderStatusChanged, o.ID, aggregateType),
		Status:          string(o.Status),
	}
}
