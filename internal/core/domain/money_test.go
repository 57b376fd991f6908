package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velopay/payment_platform_app/internal/core/domain"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		currency     string
		wantErr      bool
		wantAmount   string
		wantCurrency string
	}{
		{name: "whole amount", amount: "100", currency: "ZAR", wantAmount: "100.00", wantCurrency: "ZAR"},
		{name: "rounds half up", amount: "10.005", currency: "ZAR", wantAmount: "10.01", wantCurrency: "ZAR"},
		{name: "rounds down", amount: "10.004", currency: "ZAR", wantAmount: "10.00", wantCurrency: "ZAR"},
		{name: "normalises currency case", amount: "5", currency: "usd", wantAmount: "5.00", wantCurrency: "USD"},
		{name: "trims currency", amount: "5", currency: " EUR ", wantAmount: "5.00", wantCurrency: "EUR"},
		{name: "rejects short currency", amount: "5", currency: "ZA", wantErr: true},
		{name: "rejects long currency", amount: "5", currency: "ZARS", wantErr: true},
		{name: "rejects empty currency", amount: "5", currency: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPayment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, m.Amount.StringFixed(2))
			assert.Equal(t, tt.wantCurrency, m.CurrencyCode)
		})
	}
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := domain.NewMoneyFromString("123.456", "ZAR")
	require.NoError(t, err)
	assert.Equal(t, "123.46 ZAR", m.String())

	_, err = domain.NewMoneyFromString("not-a-number", "ZAR")
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)
}

func TestMoney_Arithmetic(t *testing.T) {
	a, err := domain.NewMoneyFromString("10.50", "ZAR")
	require.NoError(t, err)
	b, err := domain.NewMoneyFromString("4.25", "ZAR")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.75 ZAR", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "6.25 ZAR", diff.String())

	scaled := a.Multiply(decimal.RequireFromString("0.1"))
	assert.Equal(t, "1.05 ZAR", scaled.String())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	zar, err := domain.NewMoneyFromString("10", "ZAR")
	require.NoError(t, err)
	usd, err := domain.NewMoneyFromString("10", "USD")
	require.NoError(t, err)

	_, err = zar.Add(usd)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	_, err = zar.Subtract(usd)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoney_IsNegativeOrZero(t *testing.T) {
	zero, err := domain.NewMoney(decimal.Zero, "ZAR")
	require.NoError(t, err)
	assert.True(t, zero.IsNegativeOrZero())

	negative, err := domain.NewMoneyFromString("-0.01", "ZAR")
	require.NoError(t, err)
	assert.True(t, negative.IsNegativeOrZero())

	positive, err := domain.NewMoneyFromString("0.01", "ZAR")
	require.NoError(t, err)
	assert.False(t, positive.IsNegativeOrZero())
}

func TestMoney_Equal(t *testing.T) {
	a, err := domain.NewMoneyFromString("10.00", "ZAR")
	require.NoError(t, err)
	b, err := domain.NewMoneyFromString("10", "zar")
	require.NoError(t, err)
	c, err := domain.NewMoneyFromString("10", "USD")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
