package payment

import (
	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
)

// Record status values derived from the gateway response code
const (
	RecordSuccess = "success"
	RecordFailed  = "failed"
)

// Record is an immutable audit log entry written once per gateway callback.
// Multiple records may exist for one order (a failed attempt, then a
// successful retry). Records are never updated after creation.
type Record struct {
	shared.BaseEntity
	OrderID uuid.UUID         `gorm:"type:uuid;index;not null" json:"order_id"`
	UserID  uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Gateway string            `gorm:"type:varchar(20);not null" json:"gateway"`
	Amount  valueobject.Money `gorm:"type:decimal(20,2)" json:"amount"`
	Status  string            `gorm:"type:varchar(20);not null" json:"status"`

	// Gateway fields persisted verbatim for audit
	TmnCode           string `gorm:"type:varchar(50)" json:"tmn_code"`
	TxnRef            string `gorm:"type:varchar(100);index" json:"txn_ref"`
	OrderInfo         string `gorm:"type:varchar(255)" json:"order_info"`
	ResponseCode      string `gorm:"type:varchar(10)" json:"response_code"`
	BankCode          string `gorm:"type:varchar(50)" json:"bank_code"`
	BankTranNo        string `gorm:"type:varchar(100)" json:"bank_tran_no"`
	CardType          string `gorm:"type:varchar(20)" json:"card_type"`
	PayDate           string `gorm:"type:varchar(20)" json:"pay_date"`
	TransactionNo     string `gorm:"type:varchar(100)" json:"transaction_no"`
	TransactionStatus string `gorm:"type:varchar(10)" json:"transaction_status"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "payment_records"
}

// NewRecord builds an audit record from verified callback data
func NewRecord(orderID, userID uuid.UUID, gateway string, data *CallbackData) *Record {
	status := RecordFailed
	if data.Success {
		status = RecordSuccess
	}

	return &Record{
		BaseEntity:        shared.NewBaseEntity(),
		OrderID:           orderID,
		UserID:            userID,
		Gateway:           gateway,
		Amount:            data.Amount,
		Status:            status,
		TmnCode:           data.TmnCode,
		TxnRef:            data.TxnRef,
		OrderInfo:         data.OrderInfo,
		ResponseCode:      data.ResponseCode,
		BankCode:          data.BankCode,
		BankTranNo:        data.BankTranNo,
		CardType:          data.CardType,
		PayDate:           data.PayDate,
		TransactionNo:     data.TransactionNo,
		TransactionStatus: data.TransactionStatus,
	}
}
