package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/scentshop/backend/internal/domain/payment"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
	"github.com/scentshop/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
)

const (
	vnpayVersion    = "2.1.0"
	vnpayCommand    = "pay"
	vnpayCurrency   = "VND"
	vnpayLocale     = "vn"
	vnpayTimeLayout = "20060102150405"
)

// storeZone is the gateway's reference timezone for vnp_CreateDate
var storeZone = time.FixedZone("UTC+7", 7*60*60)

// VNPayAdapter implements payment.Gateway for the VNPay hosted payment page.
// Requests are signed with HMAC-SHA512 over the sorted, URL-encoded
// parameter string; callbacks are verified the same way.
type VNPayAdapter struct {
	tmnCode    string
	hashSecret []byte
	payURL     string
	returnURL  string
	ipnURL     string
	now        func() time.Time
}

// NewVNPayAdapter creates a VNPay adapter from gateway configuration
func NewVNPayAdapter(cfg config.VNPayConfig) (*VNPayAdapter, error) {
	if cfg.TmnCode == "" || cfg.HashSecret == "" {
		return nil, fmt.Errorf("vnpay: tmn_code and hash_secret are required")
	}
	payURL := cfg.PayURL
	if payURL == "" {
		payURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	}

	return &VNPayAdapter{
		tmnCode:    cfg.TmnCode,
		hashSecret: []byte(cfg.HashSecret),
		payURL:     payURL,
		returnURL:  cfg.ReturnURL,
		ipnURL:     cfg.IpnURL,
		now:        time.Now,
	}, nil
}

// Name identifies the provider
func (a *VNPayAdapter) Name() string {
	return "vnpay"
}

// BuildPaymentURL constructs a signed redirect URL for the hosted payment
// page. The amount is sent in minor units (VND x100) and vnp_TxnRef carries
// the order id so the IPN can be routed back.
func (a *VNPayAdapter) BuildPaymentURL(ctx context.Context, req payment.PaymentURLRequest) (string, error) {
	if req.Amount.IsZero() || req.Amount.IsNegative() {
		return "", fmt.Errorf("vnpay: amount must be positive")
	}

	params := url.Values{}
	params.Set("vnp_Version", vnpayVersion)
	params.Set("vnp_Command", vnpayCommand)
	params.Set("vnp_TmnCode", a.tmnCode)
	params.Set("vnp_Amount", req.Amount.Amount().Mul(decimal.NewFromInt(100)).Truncate(0).String())
	params.Set("vnp_CurrCode", vnpayCurrency)
	params.Set("vnp_TxnRef", req.OrderID.String())
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", vnpayLocale)
	params.Set("vnp_IpAddr", normalizeIP(req.ClientIP))
	params.Set("vnp_CreateDate", a.now().In(storeZone).Format(vnpayTimeLayout))
	if a.returnURL != "" {
		params.Set("vnp_ReturnUrl", a.returnURL)
	}
	if a.ipnURL != "" {
		params.Set("vnp_IpnUrl", a.ipnURL)
	}

	signData := hashData(params)
	signature := a.sign(signData)

	return a.payURL + "?" + signData + "&vnp_SecureHash=" + signature, nil
}

// VerifyCallback checks the payload signature and parses the gateway fields.
// The secure hash fields are excluded from the signed string, exactly as
// they were on the outbound leg.
func (a *VNPayAdapter) VerifyCallback(params url.Values) (*payment.CallbackData, error) {
	received := params.Get("vnp_SecureHash")
	if received == "" {
		return nil, payment.ErrChecksumFailed
	}

	verifiable := url.Values{}
	for key, values := range params {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		for _, v := range values {
			verifiable.Add(key, v)
		}
	}

	expected := a.sign(hashData(verifiable))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, payment.ErrChecksumFailed
	}

	amountMinor, err := decimal.NewFromString(params.Get("vnp_Amount"))
	if err != nil {
		return nil, fmt.Errorf("vnpay: invalid amount %q", params.Get("vnp_Amount"))
	}

	responseCode := params.Get("vnp_ResponseCode")

	return &payment.CallbackData{
		TxnRef:            params.Get("vnp_TxnRef"),
		Amount:            valueobject.NewMoneyVND(amountMinor.Div(decimal.NewFromInt(100))),
		Success:           responseCode == "00",
		ResponseCode:      responseCode,
		TmnCode:           params.Get("vnp_TmnCode"),
		OrderInfo:         params.Get("vnp_OrderInfo"),
		BankCode:          params.Get("vnp_BankCode"),
		BankTranNo:        params.Get("vnp_BankTranNo"),
		CardType:          params.Get("vnp_CardType"),
		PayDate:           params.Get("vnp_PayDate"),
		TransactionNo:     params.Get("vnp_TransactionNo"),
		TransactionStatus: params.Get("vnp_TransactionStatus"),
	}, nil
}

// hashData builds the canonical signing string: parameters sorted by key,
// each key and value URL-encoded, joined with & exactly as they appear in
// the query string.
func hashData(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if params.Get(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params.Get(key)))
	}
	return sb.String()
}

func (a *VNPayAdapter) sign(data string) string {
	mac := hmac.New(sha512.New, a.hashSecret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// normalizeIP converts IPv6 loopback and mapped addresses to the dotted
// form the gateway expects
func normalizeIP(ip string) string {
	if ip == "::1" {
		return "127.0.0.1"
	}
	return strings.TrimPrefix(ip, "::ffff:")
}

var _ payment.Gateway = (*VNPayAdapter)(nil)
