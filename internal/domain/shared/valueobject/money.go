package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency used when none is specified
const DefaultCurrency = "VND"

// Money is an immutable monetary amount. Arithmetic returns new values
// and never mutates the receiver.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney creates a money value in the given currency
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// NewMoneyVND creates a VND money value
func NewMoneyVND(amount decimal.Decimal) Money {
	return NewMoney(amount, DefaultCurrency)
}

// NewMoneyFromFloat creates a VND money value from a float amount
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyVND(decimal.NewFromFloat(amount))
}

// ZeroMoney returns a zero VND amount
func ZeroMoney() Money {
	return NewMoneyVND(decimal.Zero)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Add returns the sum of two money values.
// Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return NewMoney(m.amount.Add(other.amount), m.Currency()), nil
}

// Sub returns the difference of two money values
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	return NewMoney(m.amount.Sub(other.amount), m.Currency()), nil
}

// Mul returns the amount multiplied by an integer factor
func (m Money) Mul(factor int64) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(factor)), m.Currency())
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative reports whether the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equals reports amount and currency equality
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() && m.amount.Equal(other.amount)
}

// Float64 returns the amount as a float (for response DTOs)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// String implements fmt.Stringer
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.Currency())
}

// Value implements driver.Valuer, storing only the amount.
// The currency is uniform across the store.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = ZeroMoney()
		return nil
	}

	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("failed to scan money amount: %w", err)
	}
	*m = NewMoneyVND(d)
	return nil
}
