package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
)

// ShippingAddress is captured at checkout and immutable afterwards
type ShippingAddress struct {
	FullName string `gorm:"type:varchar(100);not null" json:"full_name"`
	Phone    string `gorm:"type:varchar(20);not null" json:"phone"`
	Address  string `gorm:"type:varchar(255);not null" json:"address"`
	City     string `gorm:"type:varchar(100)" json:"city,omitempty"`
	District string `gorm:"type:varchar(100)" json:"district,omitempty"`
	Ward     string `gorm:"type:varchar(100)" json:"ward,omitempty"`
}

// Validate checks the three required fields
func (a ShippingAddress) Validate() error {
	if strings.TrimSpace(a.FullName) == "" ||
		strings.TrimSpace(a.Phone) == "" ||
		strings.TrimSpace(a.Address) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "full name, phone and address are required")
	}
	return nil
}

// Item is an immutable line-item snapshot. Name, volume and price are
// captured at checkout so later catalog edits never alter the order.
type Item struct {
	shared.BaseEntity
	OrderID       uuid.UUID         `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null" json:"product_id"`
	ProductName   string            `gorm:"type:varchar(255);not null" json:"product_name"`
	VariantVolume string            `gorm:"type:varchar(50);not null" json:"variant_volume"`
	VariantPrice  valueobject.Money `gorm:"type:decimal(20,2)" json:"variant_price"`
	Quantity      int               `gorm:"not null" json:"quantity"`
	LineTotal     valueobject.Money `gorm:"type:decimal(20,2)" json:"line_total"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem snapshots a cart line against the current catalog state
func NewItem(productID uuid.UUID, productName, variantVolume string, variantPrice valueobject.Money, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "quantity must be at least 1")
	}
	if variantPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "variant price cannot be negative")
	}

	return &Item{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		ProductName:   productName,
		VariantVolume: variantVolume,
		VariantPrice:  variantPrice,
		Quantity:      quantity,
		LineTotal:     variantPrice.Mul(int64(quantity)),
	}, nil
}

// TimelineEntry is one immutable record in the order's append-only history
type TimelineEntry struct {
	shared.BaseEntity
	OrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	Status  Status    `gorm:"type:varchar(30);not null" json:"status"`
	Note    string    `gorm:"type:text" json:"note,omitempty"`
}

// TableName returns the table name for GORM
func (TimelineEntry) TableName() string {
	return "order_timeline_entries"
}

// Order is created once per checkout. The item list and total are immutable
// after creation; only status transitions and timeline appends mutate it.
type Order struct {
	shared.BaseAggregateRoot
	UserID        uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Items         []Item            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount   valueobject.Money `gorm:"type:decimal(20,2)" json:"total_amount"`
	Status        Status            `gorm:"type:varchar(30);not null;index" json:"status"`
	PaymentMethod PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus     `gorm:"type:varchar(20);not null" json:"payment_status"`
	Shipping      ShippingAddress   `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Timeline      []TimelineEntry   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"timeline"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder builds an order from snapshotted items. The total is the sum of
// line totals and is never recomputed from the catalog afterwards.
func NewOrder(userID uuid.UUID, items []*Item, method PaymentMethod, shipping ShippingAddress) (*Order, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "payment method must be cod or vnpay")
	}
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "cannot create an order without items")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            method.InitialStatus(),
		PaymentMethod:     method,
		PaymentStatus:     PaymentPending,
		Shipping:          shipping,
	}

	total := valueobject.ZeroMoney()
	for _, it := range items {
		it.OrderID = o.ID
		o.Items = append(o.Items, *it)
		sum, err := total.Add(it.LineTotal)
		if err != nil {
			return nil, err
		}
		total = sum
	}
	o.TotalAmount = total

	note := "Order placed, awaiting payment"
	if method == MethodCOD {
		note = "Order placed, payment on delivery"
	}
	o.appendTimeline(o.Status, note)

	o.AddDomainEvent(NewCreatedEvent(o))
	return o, nil
}

// MarkPaid records a successful gateway payment
func (o *Order) MarkPaid(note string) error {
	if o.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("ALREADY_PAID", "order is already paid")
	}
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError("INVALID_STATE", "order cannot move to paid from "+string(o.Status))
	}

	now := time.Now()
	o.Status = StatusPaid
	o.PaymentStatus = PaymentPaid
	o.PaidAt = &now
	o.appendTimeline(StatusPaid, note)
	o.Touch()

	o.AddDomainEvent(NewPaidEvent(o))
	return nil
}

// MarkPaymentFailed records a failed gateway payment. A failed transaction
// cancels the order outright; there is no retry path after this fires.
func (o *Order) MarkPaymentFailed(note string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "order is already in a terminal state")
	}

	now := time.Now()
	o.PaymentStatus = PaymentFailed
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.appendTimeline(StatusCancelled, note)
	o.Touch()

	o.AddDomainEvent(NewCancelledEvent(o, note))
	return nil
}

// TransitionTo applies an admin-driven status change, validating the move
// and appending a timeline entry.
func (o *Order) TransitionTo(target Status, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATE", "unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"cannot move order from "+string(o.Status)+" to "+string(target))
	}

	if target == StatusCancelled {
		return o.Cancel(note)
	}

	o.Status = target
	if target == StatusPaid {
		now := time.Now()
		o.PaymentStatus = PaymentPaid
		o.PaidAt = &now
	}
	o.appendTimeline(target, note)
	o.Touch()

	o.AddDomainEvent(NewStatusChangedEvent(o))
	return nil
}

// Cancel moves the order to cancelled from any non-terminal state
func (o *Order) Cancel(note string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "order can no longer be cancelled")
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.appendTimeline(StatusCancelled, note)
	o.Touch()

	o.AddDomainEvent(NewCancelledEvent(o, note))
	return nil
}

// EnsureRetryable checks whether a fresh payment URL may be issued.
// Each rejection is distinguishable so the caller can explain why.
func (o *Order) EnsureRetryable() error {
	if o.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("ALREADY_PAID", "order is already paid")
	}
	if o.Status == StatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "order has been cancelled")
	}
	if o.Status != StatusWaitingPayment {
		return shared.NewDomainError("WRONG_STATUS", "order is not waiting for payment")
	}
	return nil
}

func (o *Order) appendTimeline(status Status, note string) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		Status:     status,
		Note:       note,
	})
}
