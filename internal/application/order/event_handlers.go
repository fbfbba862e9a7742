package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/shared"
)

// LifecycleHandler reacts to order lifecycle events. It currently writes
// a structured audit line per event; notification delivery hangs off the
// same subscription when it lands.
type LifecycleHandler struct {
	logger *zap.Logger
}

// NewLifecycleHandler creates a handler for order lifecycle events
func NewLifecycleHandler(logger *zap.Logger) *LifecycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *LifecycleHandler) EventTypes() []string {
	return []string{
		order.EventOrderCreated,
		order.EventOrderPaid,
		order.EventOrderCancelled,
		order.EventOrderStatusChanged,
	}
}

// Handle processes a single order event
func (h *LifecycleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("order_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case order.CreatedEvent:
		fields = append(fields,
			zap.String("user_id", e.UserID),
			zap.Float64("total_amount", e.TotalAmount),
			zap.String("payment_method", e.PaymentMethod),
		)
	case order.PaidEvent:
		fields = append(fields,
			zap.String("user_id", e.UserID),
			zap.Float64("total_amount", e.TotalAmount),
		)
	case order.CancelledEvent:
		fields = append(fields,
			zap.String("user_id", e.UserID),
			zap.String("reason", e.Reason),
		)
	case order.StatusChangedEvent:
		fields = append(fields, zap.String("status", e.Status))
	}

	h.logger.Info("order event", fields...)
	return nil
}

var _ shared.EventHandler = (*LifecycleHandler)(nil)
