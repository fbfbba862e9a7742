package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// How long a processed IPN key stays marked. Gateways stop redelivering
// well within this window.
const ipnKeyTTL = 24 * time.Hour

// ErrUnknownGateway is returned for callbacks addressed to an
// unregistered provider
var ErrUnknownGateway = errors.New("unknown payment gateway")

// CallbackService processes asynchronous gateway notifications (IPN) and
// exposes the payment audit log.
type CallbackService struct {
	gateways map[string]payment.Gateway
	orders   order.Repository
	records  payment.RecordRepository
	idem     shared.IdempotencyStore
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewCallbackService creates a callback service with no gateways registered
func NewCallbackService(
	orders order.Repository,
	records payment.RecordRepository,
	idem shared.IdempotencyStore,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CallbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallbackService{
		gateways: make(map[string]payment.Gateway),
		orders:   orders,
		records:  records,
		idem:     idem,
		events:   events,
		logger:   logger,
	}
}

// RegisterGateway adds a payment provider by name
func (s *CallbackService) RegisterGateway(gw payment.Gateway) {
	s.gateways[gw.Name()] = gw
}

// ProcessIPN handles one gateway notification and always produces an
// acknowledgement the gateway recognizes, so it stops redelivering.
// Each verification step short-circuits without touching the order.
func (s *CallbackService) ProcessIPN(ctx context.Context, gatewayName string, params url.Values) payment.IPNAck {
	gw, ok := s.gateways[gatewayName]
	if !ok {
		s.logger.Error("IPN for unregistered gateway", zap.String("gateway", gatewayName))
		return payment.AckUnknownError
	}

	data, err := gw.VerifyCallback(params)
	if err != nil {
		if errors.Is(err, payment.ErrChecksumFailed) {
			s.logger.Warn("IPN checksum failed", zap.String("gateway", gatewayName))
			return payment.AckChecksumFailed
		}
		s.logger.Error("IPN verification error", zap.Error(err))
		return payment.AckUnknownError
	}

	orderID, err := uuid.Parse(data.TxnRef)
	if err != nil {
		return payment.AckOrderNotFound
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return payment.AckOrderNotFound
		}
		s.logger.Error("IPN order lookup failed", zap.Error(err), zap.String("txn_ref", data.TxnRef))
		return payment.AckUnknownError
	}

	// Guards against a tampered or stale callback being applied to the
	// wrong order
	if !data.Amount.Equals(o.TotalAmount) {
		s.logger.Warn("IPN amount mismatch",
			zap.String("order_id", orderID.String()),
			zap.Float64("reported", data.Amount.Float64()),
			zap.Float64("stored", o.TotalAmount.Float64()))
		return payment.AckInvalidAmount
	}

	if data.Success && o.PaymentStatus == order.PaymentPaid {
		return payment.AckAlreadyConfirmed
	}

	// Idempotency key covers duplicate failure callbacks too, which the
	// paid-status comparison alone would not
	key := fmt.Sprintf("%s:ipn:%s:%s", gatewayName, data.TxnRef, data.ResponseCode)
	processed, err := s.idem.IsProcessed(ctx, key)
	if err != nil {
		// Fail open: the paid-status guard above still protects the
		// success path
		s.logger.Error("idempotency store unavailable", zap.Error(err), zap.String("key", key))
	} else if processed {
		return payment.AckAlreadyConfirmed
	}

	var ack payment.IPNAck
	if data.Success {
		ack = s.applySuccess(ctx, gatewayName, o, data)
	} else {
		ack = s.applyFailure(ctx, gatewayName, o, data)
	}

	// The key is marked only after a successful apply so a failed order
	// save stays retryable by the gateway
	if ack == payment.AckConfirmSuccess || ack == payment.AckAlreadyConfirmed {
		if _, err := s.idem.MarkProcessed(ctx, key, ipnKeyTTL); err != nil {
			s.logger.Error("failed to mark IPN processed", zap.Error(err), zap.String("key", key))
		}
	}
	return ack
}

func (s *CallbackService) applySuccess(ctx context.Context, gatewayName string, o *order.Order, data *payment.CallbackData) payment.IPNAck {
	expected := o.Version
	if err := o.MarkPaid("Payment confirmed via " + gatewayName); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_PAID" {
			return payment.AckAlreadyConfirmed
		}
		s.logger.Error("IPN could not mark order paid", zap.Error(err))
		return payment.AckUnknownError
	}

	if err := s.orders.SaveWithLock(ctx, o, expected); err != nil {
		s.logger.Error("IPN order save failed", zap.Error(err), zap.String("order_id", o.ID.String()))
		return payment.AckUnknownError
	}
	s.publishEvents(ctx, o)
	s.writeRecord(ctx, gatewayName, o, data)

	return payment.AckConfirmSuccess
}

func (s *CallbackService) applyFailure(ctx context.Context, gatewayName string, o *order.Order, data *payment.CallbackData) payment.IPNAck {
	expected := o.Version
	note := fmt.Sprintf("Payment failed via %s (code %s), order cancelled", gatewayName, data.ResponseCode)
	if err := o.MarkPaymentFailed(note); err != nil {
		// Terminal orders absorb the duplicate failure without mutation
		return payment.AckConfirmSuccess
	}

	if err := s.orders.SaveWithLock(ctx, o, expected); err != nil {
		s.logger.Error("IPN order save failed", zap.Error(err), zap.String("order_id", o.ID.String()))
		return payment.AckUnknownError
	}
	s.publishEvents(ctx, o)

	// Best effort: order correctness takes priority over the audit log
	s.writeRecord(ctx, gatewayName, o, data)
	return payment.AckConfirmSuccess
}

func (s *CallbackService) writeRecord(ctx context.Context, gatewayName string, o *order.Order, data *payment.CallbackData) {
	record := payment.NewRecord(o.ID, o.UserID, gatewayName, data)
	if err := s.records.Create(ctx, record); err != nil {
		s.logger.Error("payment record write failed",
			zap.Error(err),
			zap.String("order_id", o.ID.String()),
			zap.String("txn_ref", data.TxnRef))
	}
}

func (s *CallbackService) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, o.DomainEvents()...)
	o.ClearDomainEvents()
}

// ReturnResult is what the browser-facing return endpoint reports
type ReturnResult struct {
	OrderID      string  `json:"order_id"`
	Success      bool    `json:"success"`
	ResponseCode string  `json:"response_code"`
	Amount       float64 `json:"amount"`
}

// ProcessReturn verifies the browser return redirect. It only reports the
// outcome; the authoritative state change happens through the IPN.
func (s *CallbackService) ProcessReturn(gatewayName string, params url.Values) (*ReturnResult, error) {
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return nil, ErrUnknownGateway
	}

	data, err := gw.VerifyCallback(params)
	if err != nil {
		return nil, err
	}

	return &ReturnResult{
		OrderID:      data.TxnRef,
		Success:      data.Success,
		ResponseCode: data.ResponseCode,
		Amount:       data.Amount.Float64(),
	}, nil
}

// RecordResponse is a payment audit log entry view
type RecordResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Gateway       string    `json:"gateway"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	TxnRef        string    `json:"txn_ref"`
	ResponseCode  string    `json:"response_code"`
	BankCode      string    `json:"bank_code,omitempty"`
	TransactionNo string    `json:"transaction_no,omitempty"`
	PayDate       string    `json:"pay_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListRecords returns a page of the payment audit log (admin)
func (s *CallbackService) ListRecords(ctx context.Context, page, pageSize int) ([]*RecordResponse, int64, error) {
	filter := shared.NewFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	records, total, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toRecordResponses(records), total, nil
}

// History returns a page of the authenticated user's own payment records,
// newest first
func (s *CallbackService) History(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*RecordResponse, int64, error) {
	filter := shared.NewFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	records, total, err := s.records.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toRecordResponses(records), total, nil
}

// OrderRecords returns every audit entry for one order, oldest first (admin)
func (s *CallbackService) OrderRecords(ctx context.Context, orderID uuid.UUID) ([]*RecordResponse, error) {
	records, err := s.records.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toRecordResponses(records), nil
}

func toRecordResponses(records []*payment.Record) []*RecordResponse {
	responses := make([]*RecordResponse, len(records))
	for i, r := range records {
		responses[i] = &RecordResponse{
			ID:            r.ID.String(),
			OrderID:       r.OrderID.String(),
			UserID:        r.UserID.String(),
			Gateway:       r.Gateway,
			Amount:        r.Amount.Float64(),
			Status:        r.Status,
			TxnRef:        r.TxnRef,
			ResponseCode:  r.ResponseCode,
			BankCode:      r.BankCode,
			TransactionNo: r.TransactionNo,
			PayDate:       r.PayDate,
			CreatedAt:     r.CreatedAt,
		}
	}
	return responses
}
