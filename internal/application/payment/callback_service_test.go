package payment

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderRepo struct {
	orders  map[uuid.UUID]*order.Order
	saveErr error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, _ order.ListFilter) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

func (r *stubOrderRepo) Create(_ context.Context, o *order.Order, _ *uuid.UUID) error {
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) SaveWithLock(_ context.Context, o *order.Order, expectedVersion int) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if o.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	o.IncrementVersion()
	r.orders[o.ID] = o
	return nil
}

type stubRecordRepo struct {
	records   []*payment.Record
	createErr error
}

func (r *stubRecordRepo) Create(_ context.Context, rec *payment.Record) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *stubRecordRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) ([]*payment.Record, error) {
	var out []*payment.Record
	for _, rec := range r.records {
		if rec.OrderID == orderID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubRecordRepo) List(_ context.Context, _ shared.Filter) ([]*payment.Record, int64, error) {
	return r.records, int64(len(r.records)), nil
}

func (r *stubRecordRepo) ListByUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]*payment.Record, int64, error) {
	var out []*payment.Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

type memIdemStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{keys: make(map[string]bool)}
}

func (s *memIdemStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memIdemStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdemStore) Close() error { return nil }

// stubGateway returns a fixed parse result instead of doing real
// signature verification
type stubGateway struct {
	data *payment.CallbackData
	err  error
}

func (g *stubGateway) Name() string { return "vnpay" }

func (g *stubGateway) BuildPaymentURL(_ context.Context, _ payment.PaymentURLRequest) (string, error) {
	return "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", nil
}

func (g *stubGateway) VerifyCallback(_ url.Values) (*payment.CallbackData, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

type ipnFixture struct {
	svc     *CallbackService
	orders  *stubOrderRepo
	records *stubRecordRepo
	idem    *memIdemStore
	gateway *stubGateway
	order   *order.Order
}

func newIPNFixture(t *testing.T) *ipnFixture {
	t.Helper()

	item, err := order.NewItem(uuid.New(), "Gucci Bloom", "100ml", valueobject.NewMoneyFromFloat(2800000), 1)
	require.NoError(t, err)
	o, err := order.NewOrder(uuid.New(), []*order.Item{item}, order.MethodVNPay, order.ShippingAddress{
		FullName: "Le Van C",
		Phone:    "0912345678",
		Address:  "3 Tran Phu",
	})
	require.NoError(t, err)

	orders := newStubOrderRepo()
	orders.orders[o.ID] = o

	records := &stubRecordRepo{}
	idem := newMemIdemStore()
	gateway := &stubGateway{}

	svc := NewCallbackService(orders, records, idem, nil, nil)
	svc.RegisterGateway(gateway)

	return &ipnFixture{
		svc:     svc,
		orders:  orders,
		records: records,
		idem:    idem,
		gateway: gateway,
		order:   o,
	}
}

func successData(o *order.Order) *payment.CallbackData {
	return &payment.CallbackData{
		TxnRef:            o.ID.String(),
		Amount:            o.TotalAmount,
		Success:           true,
		ResponseCode:      "00",
		BankCode:          "NCB",
		TransactionNo:     "14226112",
		PayDate:           "20260830143022",
		TransactionStatus: "00",
	}
}

func failureData(o *order.Order) *payment.CallbackData {
	d := successData(o)
	d.Success = false
	d.ResponseCode = "24"
	d.TransactionStatus = "02"
	return d
}

func TestCallbackService_ProcessIPN(t *testing.T) {
	ctx := context.Background()

	t.Run("successful payment marks order paid and writes a record", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = successData(f.order)

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Equal(t, payment.AckConfirmSuccess, ack)
		assert.Equal(t, order.StatusPaid, f.order.Status)
		assert.Equal(t, order.PaymentPaid, f.order.PaymentStatus)
		require.Len(t, f.records.records, 1)
		assert.Equal(t, payment.RecordSuccess, f.records.records[0].Status)
	})

	t.Run("duplicate success callbacks leave exactly one paid transition", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = successData(f.order)

		first := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
		timelineAfterFirst := len(f.order.Timeline)

		for i := 0; i < 3; i++ {
			ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
			assert.Equal(t, payment.AckAlreadyConfirmed, ack)
		}

		assert.Equal(t, payment.AckConfirmSuccess, first)
		assert.Len(t, f.order.Timeline, timelineAfterFirst)
		assert.Len(t, f.records.records, 1)
	})

	t.Run("failed payment cancels the order but still acks success", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = failureData(f.order)

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Equal(t, payment.AckConfirmSuccess, ack)
		assert.Equal(t, order.StatusCancelled, f.order.Status)
		assert.Equal(t, order.PaymentFailed, f.order.PaymentStatus)
		require.Len(t, f.records.records, 1)
		assert.Equal(t, payment.RecordFailed, f.records.records[0].Status)
	})

	t.Run("duplicate failure callbacks do not re-append timeline entries", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = failureData(f.order)

		f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
		timelineLen := len(f.order.Timeline)

		f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Len(t, f.order.Timeline, timelineLen)
		assert.Len(t, f.records.records, 1)
	})

	t.Run("checksum failure acks 97 and leaves the order untouched", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.err = payment.ErrChecksumFailed

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Equal(t, payment.AckChecksumFailed, ack)
		assert.Equal(t, order.StatusWaitingPayment, f.order.Status)
		assert.Empty(t, f.records.records)
	})

	t.Run("unknown transaction reference acks 01", func(t *testing.T) {
		f := newIPNFixture(t)
		data := successData(f.order)
		data.TxnRef = uuid.New().String()
		f.gateway.data = data

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
		assert.Equal(t, payment.AckOrderNotFound, ack)
	})

	t.Run("amount mismatch acks 04 and never mutates the order", func(t *testing.T) {
		f := newIPNFixture(t)
		data := successData(f.order)
		data.Amount = valueobject.NewMoneyFromFloat(1)
		f.gateway.data = data

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Equal(t, payment.AckInvalidAmount, ack)
		assert.Equal(t, order.StatusWaitingPayment, f.order.Status)
		assert.Len(t, f.order.Timeline, 1)
	})

	t.Run("record write failure does not block the order save", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = failureData(f.order)
		f.records.createErr = errors.New("disk full")

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})

		assert.Equal(t, payment.AckConfirmSuccess, ack)
		assert.Equal(t, order.StatusCancelled, f.order.Status)
	})

	t.Run("order save failure acks 99 and stays retryable", func(t *testing.T) {
		f := newIPNFixture(t)
		f.gateway.data = successData(f.order)
		f.orders.saveErr = errors.New("connection reset")

		ack := f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
		assert.Equal(t, payment.AckUnknownError, ack)

		// Gateway redelivers after the transient failure clears
		f.orders.saveErr = nil
		f.order.PaymentStatus = order.PaymentPending
		f.order.Status = order.StatusWaitingPayment

		ack = f.svc.ProcessIPN(ctx, "vnpay", url.Values{})
		assert.Equal(t, payment.AckConfirmSuccess, ack)
	})

	t.Run("unregistered gateway acks 99", func(t *testing.T) {
		f := newIPNFixture(t)
		ack := f.svc.ProcessIPN(ctx, "stripe", url.Values{})
		assert.Equal(t, payment.AckUnknownError, ack)
	})
}

func TestCallbackService_ProcessReturn(t *testing.T) {
	f := newIPNFixture(t)
	f.gateway.data = successData(f.order)

	result, err := f.svc.ProcessReturn("vnpay", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, f.order.ID.String(), result.OrderID)
	assert.True(t, result.Success)
	assert.Equal(t, "00", result.ResponseCode)
}

func TestCallbackService_History(t *testing.T) {
	ctx := context.Background()
	f := newIPNFixture(t)

	f.records.records = append(f.records.records,
		payment.NewRecord(f.order.ID, f.order.UserID, "vnpay", successData(f.order)),
		payment.NewRecord(uuid.New(), uuid.New(), "vnpay", successData(f.order)),
	)

	t.Run("returns only the user's own records", func(t *testing.T) {
		records, total, err := f.svc.History(ctx, f.order.UserID, 1, 20)
		require.NoError(t, err)

		assert.EqualValues(t, 1, total)
		require.Len(t, records, 1)
		assert.Equal(t, f.order.ID.String(), records[0].OrderID)
		assert.Equal(t, f.order.UserID.String(), records[0].UserID)
	})

	t.Run("returns an empty page for a user with no payments", func(t *testing.T) {
		records, total, err := f.svc.History(ctx, uuid.New(), 1, 20)
		require.NoError(t, err)

		assert.Zero(t, total)
		assert.Empty(t, records)
	})
}
