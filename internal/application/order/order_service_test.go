package order

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/catalog"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders       map[uuid.UUID]*order.Order
	clearedCarts []uuid.UUID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	var result []*order.Order
	for _, o := range r.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, o)
	}
	return result, int64(len(result)), nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order, clearCartID *uuid.UUID) error {
	r.orders[o.ID] = o
	if clearCartID != nil {
		r.clearedCarts = append(r.clearedCarts, *clearCartID)
	}
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(_ context.Context, o *order.Order, expectedVersion int) error {
	if o.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	o.IncrementVersion()
	r.orders[o.ID] = o
	return nil
}

type fakeCartRepo struct {
	carts map[uuid.UUID]*cart.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uuid.UUID]*cart.Cart)}
}

func (r *fakeCartRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.carts[c.UserID] = c
	return nil
}

func (r *fakeCartRepo) SaveWithLock(_ context.Context, c *cart.Cart, _ int) error {
	r.carts[c.UserID] = c
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

type fakeGateway struct {
	url   string
	err   error
	calls []payment.PaymentURLRequest
}

func (g *fakeGateway) Name() string { return "vnpay" }

func (g *fakeGateway) BuildPaymentURL(_ context.Context, req payment.PaymentURLRequest) (string, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

func (g *fakeGateway) VerifyCallback(_ url.Values) (*payment.CallbackData, error) {
	return nil, payment.ErrChecksumFailed
}

type fixture struct {
	svc      *Service
	orders   *fakeOrderRepo
	carts    *fakeCartRepo
	products *fakeProductRepo
	gateway  *fakeGateway
	userID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := newFakeOrderRepo()
	carts := newFakeCartRepo()
	products := newFakeProductRepo()
	gateway := &fakeGateway{url: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_Amount=1"}

	f := &fixture{
		svc:      NewService(orders, carts, products, gateway, nil),
		orders:   orders,
		carts:    carts,
		products: products,
		gateway:  gateway,
		userID:   uuid.New(),
	}
	return f
}

// seedCart puts one product with two variants into the catalog and two of
// variant 0 into the user's cart. Variant 0 costs 1,500,000 VND.
func (f *fixture) seedCart(t *testing.T) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct("Versace Eros", []catalog.VariantInput{
		{Volume: "50ml", Price: decimal.NewFromInt(1500000)},
		{Volume: "100ml", Price: decimal.NewFromInt(2400000)},
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), p))

	c := cart.NewCart(f.userID)
	require.NoError(t, c.AddItem(p.ID, 0, 2))
	require.NoError(t, f.carts.Save(context.Background(), c))
	return p
}

func checkoutReq(method string) CheckoutRequest {
	return CheckoutRequest{
		PaymentMethod: method,
		Shipping: ShippingRequest{
			FullName: "Tran Thi B",
			Phone:    "0987654321",
			Address:  "45 Nguyen Hue",
		},
	}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("vnpay checkout waits for payment and returns a URL", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)

		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("vnpay"), "127.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, string(order.StatusWaitingPayment), resp.Order.Status)
		assert.Equal(t, string(order.PaymentPending), resp.Order.PaymentStatus)
		assert.NotEmpty(t, resp.PaymentURL)
		assert.Equal(t, float64(3000000), resp.Order.TotalAmount)
	})

	t.Run("cod checkout confirms immediately without gateway call", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)

		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, string(order.StatusConfirmed), resp.Order.Status)
		assert.Empty(t, resp.PaymentURL)
		assert.Empty(t, f.gateway.calls)
	})

	t.Run("cart is cleared in the same create call", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)

		_, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		require.Len(t, f.orders.clearedCarts, 1)
		assert.Equal(t, f.carts.carts[f.userID].ID, f.orders.clearedCarts[0])
	})

	t.Run("empty cart fails with EMPTY_CART", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.carts.Save(ctx, cart.NewCart(f.userID)))

		_, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		assertDomainCode(t, err, "EMPTY_CART")
		assert.Empty(t, f.orders.orders)
	})

	t.Run("missing cart fails with EMPTY_CART", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		assertDomainCode(t, err, "EMPTY_CART")
	})

	t.Run("stale variant index fails with VARIANT_NOT_FOUND", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedCart(t)

		// Product edited after the cart line was added: one variant left
		require.NoError(t, p.ReplaceVariants([]catalog.VariantInput{
			{Volume: "30ml", Price: decimal.NewFromInt(900000)},
		}))
		c := f.carts.carts[f.userID]
		require.NoError(t, c.AddItem(p.ID, 5, 1))

		_, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		assertDomainCode(t, err, "VARIANT_NOT_FOUND")
	})

	t.Run("order total survives later price changes", func(t *testing.T) {
		f := newFixture(t)
		p := f.seedCart(t)

		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		require.NoError(t, p.ReplaceVariants([]catalog.VariantInput{
			{Volume: "50ml", Price: decimal.NewFromInt(9999999)},
		}))

		orderID := uuid.MustParse(resp.Order.ID)
		stored, err := f.orders.FindByID(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, float64(3000000), stored.TotalAmount.Float64())
	})

	t.Run("payment URL failure surfaces but order stays committed", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)
		f.gateway.err = errors.New("gateway unreachable")

		_, err := f.svc.Checkout(ctx, f.userID, checkoutReq("vnpay"), "127.0.0.1")
		assertDomainCode(t, err, "PAYMENT_URL_ERROR")

		require.Len(t, f.orders.orders, 1)
		for _, o := range f.orders.orders {
			assert.Equal(t, order.StatusWaitingPayment, o.Status)
		}
		require.Len(t, f.orders.clearedCarts, 1)
	})
}

func TestService_RetryPayment(t *testing.T) {
	ctx := context.Background()

	placeVNPayOrder := func(t *testing.T, f *fixture) uuid.UUID {
		t.Helper()
		f.seedCart(t)
		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("vnpay"), "127.0.0.1")
		require.NoError(t, err)
		return uuid.MustParse(resp.Order.ID)
	}

	t.Run("waiting order gets a fresh URL", func(t *testing.T) {
		f := newFixture(t)
		orderID := placeVNPayOrder(t, f)
		callsBefore := len(f.gateway.calls)

		url, err := f.svc.RetryPayment(ctx, f.userID, orderID, "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.Len(t, f.gateway.calls, callsBefore+1)
	})

	t.Run("paid order fails with ALREADY_PAID", func(t *testing.T) {
		f := newFixture(t)
		orderID := placeVNPayOrder(t, f)
		require.NoError(t, f.orders.orders[orderID].MarkPaid("ok"))

		_, err := f.svc.RetryPayment(ctx, f.userID, orderID, "10.0.0.1")
		assertDomainCode(t, err, "ALREADY_PAID")
	})

	t.Run("cancelled order fails with ALREADY_CANCELLED", func(t *testing.T) {
		f := newFixture(t)
		orderID := placeVNPayOrder(t, f)
		require.NoError(t, f.orders.orders[orderID].Cancel("changed my mind"))

		_, err := f.svc.RetryPayment(ctx, f.userID, orderID, "10.0.0.1")
		assertDomainCode(t, err, "ALREADY_CANCELLED")
	})

	t.Run("cod order fails with WRONG_STATUS", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)
		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		_, err = f.svc.RetryPayment(ctx, f.userID, uuid.MustParse(resp.Order.ID), "10.0.0.1")
		assertDomainCode(t, err, "WRONG_STATUS")
	})

	t.Run("another user's order is not found", func(t *testing.T) {
		f := newFixture(t)
		orderID := placeVNPayOrder(t, f)

		_, err := f.svc.RetryPayment(ctx, uuid.New(), orderID, "10.0.0.1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid forward transition appends timeline", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)
		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		updated, err := f.svc.UpdateStatus(ctx, uuid.MustParse(resp.Order.ID), UpdateStatusRequest{
			Status: "shipping",
			Note:   "Shipped with GHN",
		})
		require.NoError(t, err)
		assert.Equal(t, "shipping", updated.Status)
		assert.Equal(t, "shipping", updated.Timeline[len(updated.Timeline)-1].Status)
	})

	t.Run("invalid transition is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.seedCart(t)
		resp, err := f.svc.Checkout(ctx, f.userID, checkoutReq("cod"), "127.0.0.1")
		require.NoError(t, err)

		_, err = f.svc.UpdateStatus(ctx, uuid.MustParse(resp.Order.ID), UpdateStatusRequest{
			Status: "waiting_payment",
		})
		assertDomainCode(t, err, "INVALID_STATE")
	})
}
