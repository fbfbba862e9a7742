package order

// Status is the closed set of order lifecycle states
type Status string

const (
	StatusWaitingPayment Status = "waiting_payment"
	StatusPaid           Status = "paid"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusShipping       Status = "shipping"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// PaymentStatus tracks the payment side of the order
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// PaymentMethod is how the buyer pays
type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "cod"
	MethodVNPay PaymentMethod = "vnpay"
)

// statusRank orders the linear progression. Cancelled sits outside the chain.
var statusRank = map[Status]int{
	StatusWaitingPayment: 0,
	StatusPaid:           1,
	StatusConfirmed:      2,
	StatusProcessing:     3,
	StatusShipping:       4,
	StatusDelivered:      5,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo validates a status move: forward along the
// waiting_payment -> paid -> confirmed -> processing -> shipping -> delivered
// chain (skips allowed), or to cancelled from any non-terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return statusRank[target] > statusRank[s]
}

// IsValid reports whether m is a supported payment method
func (m PaymentMethod) IsValid() bool {
	return m == MethodCOD || m == MethodVNPay
}

// InitialStatus returns the order status a fresh order starts in.
// COD orders proceed immediately; VNPay orders wait for the gateway.
func (m PaymentMethod) InitialStatus() Status {
	if m == MethodCOD {
		return StatusConfirmed
	}
	return StatusWaitingPayment
}

// RevenueStatuses is the set of statuses counted as revenue by reporting
var RevenueStatuses = []Status{
	StatusPaid,
	StatusConfirmed,
	StatusProcessing,
	StatusShipping,
	StatusDelivered,
}

// CountsAsRevenue reports whether an order in this status contributes
// to revenue totals
func (s Status) CountsAsRevenue() bool {
	for _, rs := range RevenueStatuses {
		if s == rs {
			return true
		}
	}
	return false
}
