package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch indicates an arithmetic operation between Money values
// of different currencies. There is no implicit conversion.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// moneyScale is the number of decimal places every Money amount carries.
const moneyScale = 2

// Money is a fixed-point monetary amount in a single ISO 4217 currency.
// Amounts are normalised to two decimal places with half-up rounding at
// construction, so arithmetic stays exact.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney builds a Money value, rounding the amount to two decimal places.
func NewMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if len(code) != 3 {
		return Money{}, fmt.Errorf("%w: currency code must be a 3-letter ISO code, got %q", ErrInvalidPayment, currencyCode)
	}
	return Money{Amount: amount.Round(moneyScale), CurrencyCode: code}, nil
}

// NewMoneyFromString parses a decimal string into a Money value.
func NewMoneyFromString(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid amount %q: %v", ErrInvalidPayment, amount, err)
	}
	return NewMoney(d, currencyCode)
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Subtract returns m - other. Both values must share a currency.
func (m Money) Subtract(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Multiply scales the amount by a decimal factor, rounding to two places.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor).Round(moneyScale), CurrencyCode: m.CurrencyCode}
}

// IsNegativeOrZero is the canonical positivity check used by aggregate
// invariants: a payment amount must never be negative or zero.
func (m Money) IsNegativeOrZero() bool {
	return !m.Amount.IsPositive()
}

// Equal compares amount and currency.
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(moneyScale), m.CurrencyCode)
}
