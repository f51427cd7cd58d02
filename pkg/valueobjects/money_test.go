package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		currency    Currency
		shouldError bool
	}{
		{
			name:     "valid money",
			amount:   decimal.NewFromFloat(10.99),
			currency: USD,
		},
		{
			name:        "negative amount",
			amount:      decimal.NewFromFloat(-10.99),
			currency:    USD,
			shouldError: true,
		},
		{
			name:        "invalid currency",
			amount:      decimal.NewFromFloat(10.99),
			currency:    "XXX",
			shouldError: true,
		},
		{
			name:        "too many decimal places",
			amount:      decimal.NewFromFloat(10.999),
			currency:    USD,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money, err := NewMoney(tt.amount, tt.currency)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, money)
				return
			}
			require.NoError(t, err)
			assert.False(t, money.IsZero())
		})
	}
}

func TestMoneyIsZero(t *testing.T) {
	zero, err := NewMoney(decimal.Zero, USD)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	cents, err := NewMoney(decimal.New(1, -2), USD)
	require.NoError(t, err)
	assert.False(t, cents.IsZero())
}

func TestMoneyPerDay(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100), USD)
	require.NoError(t, err)

	parts, err := m.PerDay(3)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "33.34", parts[0].StringFixed(2))
	assert.Equal(t, "33.33", parts[1].StringFixed(2))
	assert.Equal(t, "33.33", parts[2].StringFixed(2))

	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(100)))

	_, err = m.PerDay(0)
	assert.Error(t, err)
}
