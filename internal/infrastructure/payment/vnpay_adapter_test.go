package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	domainpayment "github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
	"github.com/scentshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *VNPayAdapter {
	t.Helper()
	adapter, err := NewVNPayAdapter(config.VNPayConfig{
		TmnCode:    "TESTSHOP",
		HashSecret: "TESTSECRETKEY123456",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example.com/payment/return",
		IpnURL:     "https://api.shop.example.com/api/v1/payment/vnpay/ipn",
	})
	require.NoError(t, err)
	adapter.now = func() time.Time {
		return time.Date(2025, 3, 15, 3, 30, 0, 0, time.UTC)
	}
	return adapter
}

func TestNewVNPayAdapter(t *testing.T) {
	t.Run("requires merchant credentials", func(t *testing.T) {
		_, err := NewVNPayAdapter(config.VNPayConfig{TmnCode: "TESTSHOP"})
		assert.Error(t, err)

		_, err = NewVNPayAdapter(config.VNPayConfig{HashSecret: "secret"})
		assert.Error(t, err)
	})

	t.Run("defaults to the sandbox pay URL", func(t *testing.T) {
		adapter, err := NewVNPayAdapter(config.VNPayConfig{
			TmnCode:    "TESTSHOP",
			HashSecret: "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", adapter.payURL)
	})
}

func TestVNPayAdapter_BuildPaymentURL(t *testing.T) {
	adapter := newTestAdapter(t)
	orderID := uuid.New()

	t.Run("builds a signed URL with required parameters", func(t *testing.T) {
		rawURL, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
			OrderID:   orderID,
			Amount:    valueobject.NewMoneyFromFloat(2800000),
			OrderInfo: "Thanh toan don hang",
			ClientIP:  "203.0.113.10",
		})
		require.NoError(t, err)

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)
		params := parsed.Query()

		assert.Equal(t, "2.1.0", params.Get("vnp_Version"))
		assert.Equal(t, "pay", params.Get("vnp_Command"))
		assert.Equal(t, "TESTSHOP", params.Get("vnp_TmnCode"))
		assert.Equal(t, "280000000", params.Get("vnp_Amount"))
		assert.Equal(t, "VND", params.Get("vnp_CurrCode"))
		assert.Equal(t, orderID.String(), params.Get("vnp_TxnRef"))
		assert.Equal(t, "203.0.113.10", params.Get("vnp_IpAddr"))
		assert.Equal(t, "https://shop.example.com/payment/return", params.Get("vnp_ReturnUrl"))
		assert.Equal(t, "https://api.shop.example.com/api/v1/payment/vnpay/ipn", params.Get("vnp_IpnUrl"))
		assert.NotEmpty(t, params.Get("vnp_SecureHash"))
	})

	t.Run("the IPN URL is covered by the signature", func(t *testing.T) {
		rawURL, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
			OrderID:   orderID,
			Amount:    valueobject.NewMoneyFromFloat(2800000),
			OrderInfo: "Thanh toan don hang",
			ClientIP:  "203.0.113.10",
		})
		require.NoError(t, err)

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)
		params := parsed.Query()

		verifiable := url.Values{}
		for key, values := range params {
			if key == "vnp_SecureHash" {
				continue
			}
			for _, v := range values {
				verifiable.Add(key, v)
			}
		}
		assert.Equal(t, adapter.sign(hashData(verifiable)), params.Get("vnp_SecureHash"))

		verifiable.Set("vnp_IpnUrl", "https://attacker.example.com/ipn")
		assert.NotEqual(t, adapter.sign(hashData(verifiable)), params.Get("vnp_SecureHash"))
	})

	t.Run("renders the create date in store time", func(t *testing.T) {
		rawURL, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
			OrderID:   orderID,
			Amount:    valueobject.NewMoneyFromFloat(500000),
			OrderInfo: "test",
			ClientIP:  "127.0.0.1",
		})
		require.NoError(t, err)

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)
		// 03:30 UTC is 10:30 in UTC+7
		assert.Equal(t, "20250315103000", parsed.Query().Get("vnp_CreateDate"))
	})

	t.Run("normalizes loopback and mapped client addresses", func(t *testing.T) {
		for input, want := range map[string]string{
			"::1":                 "127.0.0.1",
			"::ffff:203.0.113.10": "203.0.113.10",
			"10.0.0.5":            "10.0.0.5",
		} {
			rawURL, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
				OrderID:   orderID,
				Amount:    valueobject.NewMoneyFromFloat(100000),
				OrderInfo: "test",
				ClientIP:  input,
			})
			require.NoError(t, err)

			parsed, err := url.Parse(rawURL)
			require.NoError(t, err)
			assert.Equal(t, want, parsed.Query().Get("vnp_IpAddr"))
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
			OrderID:   orderID,
			Amount:    valueobject.ZeroMoney(),
			OrderInfo: "test",
			ClientIP:  "127.0.0.1",
		})
		assert.Error(t, err)
	})
}

func TestVNPayAdapter_VerifyCallback(t *testing.T) {
	adapter := newTestAdapter(t)
	orderID := uuid.New()

	// signedCallback builds params the way the gateway does: the same
	// canonical string and secret as the outbound leg.
	signedCallback := func(overrides map[string]string) url.Values {
		params := url.Values{}
		params.Set("vnp_TmnCode", "TESTSHOP")
		params.Set("vnp_TxnRef", orderID.String())
		params.Set("vnp_Amount", "280000000")
		params.Set("vnp_ResponseCode", "00")
		params.Set("vnp_TransactionStatus", "00")
		params.Set("vnp_TransactionNo", "14012345")
		params.Set("vnp_BankCode", "NCB")
		params.Set("vnp_PayDate", "20250315103245")
		params.Set("vnp_OrderInfo", "Thanh toan don hang")
		for k, v := range overrides {
			params.Set(k, v)
		}
		params.Set("vnp_SecureHash", adapter.sign(hashData(params)))
		return params
	}

	t.Run("accepts a correctly signed success callback", func(t *testing.T) {
		data, err := adapter.VerifyCallback(signedCallback(nil))

		require.NoError(t, err)
		assert.True(t, data.Success)
		assert.Equal(t, orderID.String(), data.TxnRef)
		assert.True(t, data.Amount.Equals(valueobject.NewMoneyFromFloat(2800000)))
		assert.Equal(t, "00", data.ResponseCode)
		assert.Equal(t, "NCB", data.BankCode)
		assert.Equal(t, "14012345", data.TransactionNo)
	})

	t.Run("parses a failed payment callback", func(t *testing.T) {
		data, err := adapter.VerifyCallback(signedCallback(map[string]string{
			"vnp_ResponseCode":      "24",
			"vnp_TransactionStatus": "02",
		}))

		require.NoError(t, err)
		assert.False(t, data.Success)
		assert.Equal(t, "24", data.ResponseCode)
	})

	t.Run("rejects a tampered amount", func(t *testing.T) {
		params := signedCallback(nil)
		params.Set("vnp_Amount", "100")

		data, err := adapter.VerifyCallback(params)

		assert.Nil(t, data)
		assert.ErrorIs(t, err, domainpayment.ErrChecksumFailed)
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		params := signedCallback(nil)
		params.Del("vnp_SecureHash")

		data, err := adapter.VerifyCallback(params)

		assert.Nil(t, data)
		assert.ErrorIs(t, err, domainpayment.ErrChecksumFailed)
	})

	t.Run("rejects a forged signature", func(t *testing.T) {
		params := signedCallback(nil)
		params.Set("vnp_SecureHash", "deadbeef")

		data, err := adapter.VerifyCallback(params)

		assert.Nil(t, data)
		assert.ErrorIs(t, err, domainpayment.ErrChecksumFailed)
	})

	t.Run("accepts an uppercase signature", func(t *testing.T) {
		params := signedCallback(nil)
		params.Set("vnp_SecureHash", strings.ToUpper(params.Get("vnp_SecureHash")))

		data, err := adapter.VerifyCallback(params)

		require.NoError(t, err)
		assert.True(t, data.Success)
	})

	t.Run("ignores the secure hash type field when verifying", func(t *testing.T) {
		params := signedCallback(nil)
		params.Set("vnp_SecureHashType", "HMACSHA512")

		data, err := adapter.VerifyCallback(params)

		require.NoError(t, err)
		assert.True(t, data.Success)
	})

	t.Run("round trips a URL built by the adapter", func(t *testing.T) {
		rawURL, err := adapter.BuildPaymentURL(context.Background(), domainpayment.PaymentURLRequest{
			OrderID:   orderID,
			Amount:    valueobject.NewMoneyFromFloat(1500000),
			OrderInfo: "Thanh toan don hang",
			ClientIP:  "203.0.113.10",
		})
		require.NoError(t, err)

		parsed, err := url.Parse(rawURL)
		require.NoError(t, err)

		data, err := adapter.VerifyCallback(parsed.Query())

		require.NoError(t, err)
		assert.Equal(t, orderID.String(), data.TxnRef)
		assert.True(t, data.Amount.Equals(valueobject.NewMoneyFromFloat(1500000)))
	})
}
