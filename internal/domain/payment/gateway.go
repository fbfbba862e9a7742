package payment

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
)

// ErrChecksumFailed is returned when a callback signature does not verify
var ErrChecksumFailed = errors.New("callback checksum verification failed")

// PaymentURLRequest carries what the gateway needs to build a redirect URL
type PaymentURLRequest struct {
	OrderID   uuid.UUID
	Amount    valueobject.Money
	OrderInfo string
	ClientIP  string
}

// CallbackData is the verified, parsed content of a gateway notification.
// The raw gateway fields are kept verbatim for the audit record.
type CallbackData struct {
	TxnRef            string
	Amount            valueobject.Money
	Success           bool
	ResponseCode      string
	TmnCode           string
	OrderInfo         string
	BankCode          string
	BankTranNo        string
	CardType          string
	PayDate           string
	TransactionNo     string
	TransactionStatus string
}

// Gateway abstracts a payment provider: outbound signed redirect URLs and
// inbound signature-verified callbacks.
type Gateway interface {
	// Name identifies the provider (e.g. "vnpay")
	Name() string

	// BuildPaymentURL constructs a signed redirect URL bound to the order
	// id and amount. It must never cache: the transaction-reference/amount
	// binding has to reflect the latest persisted state.
	BuildPaymentURL(ctx context.Context, req PaymentURLRequest) (string, error)

	// VerifyCallback checks the payload signature and parses the fields.
	// An invalid signature returns ErrChecksumFailed.
	VerifyCallback(params url.Values) (*CallbackData, error)
}

// IPNAck is the acknowledgement body the gateway expects for every
// notification, success or failure, so it stops redelivering.
type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// Acknowledgement codes the gateway recognizes
var (
	AckConfirmSuccess   = IPNAck{RspCode: "00", Message: "Confirm success"}
	AckOrderNotFound    = IPNAck{RspCode: "01", Message: "Order not found"}
	AckAlreadyConfirmed = IPNAck{RspCode: "02", Message: "Order already confirmed"}
	AckInvalidAmount    = IPNAck{RspCode: "04", Message: "Invalid amount"}
	AckChecksumFailed   = IPNAck{RspCode: "97", Message: "Checksum failed"}
	AckUnknownError     = IPNAck{RspCode: "99", Message: "Unknown error"}
)
