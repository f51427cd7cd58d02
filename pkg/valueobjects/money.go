package valueobjects

import (
	"fmt"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/shopspring/decimal"
)

// Currency represents a valid ISO 4217 currency code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

var validCurrencies = map[Currency]bool{
	USD: true,
	EUR: true,
	GBP: true,
}

// Money represents a monetary value with a specific currency. Trip budgets
// are stored as bare decimals and validated through Money.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money instance with validation
func NewMoney(amount decimal.Decimal, currency Currency) (*Money, error) {
	if !validCurrencies[currency] {
		return nil, errors.ValidationFailed(
			"invalid currency",
			fmt.Sprintf("currency %s is not supported", currency),
		)
	}

	if amount.LessThan(decimal.Zero) {
		return nil, errors.ValidationFailed(
			"invalid budget",
			"amount cannot be negative",
		)
	}

	if amount.Exponent() < -2 {
		return nil, errors.ValidationFailed(
			"invalid budget",
			"amount cannot have more than 2 decimal places",
		)
	}

	return &Money{amount: amount, currency: currency}, nil
}

// PerDay spreads the amount over days, rounding down to the cent. The
// leftover cents go to the earliest days.
func (m Money) PerDay(days int) ([]decimal.Decimal, error) {
	if days <= 0 {
		return nil, errors.ValidationFailed(
			"invalid trip length",
			"number of days must be positive",
		)
	}

	cents := m.amount.Mul(decimal.NewFromInt(100))
	n := decimal.NewFromInt(int64(days))
	base := cents.Div(n).Floor()
	remainder := cents.Sub(base.Mul(n))

	out := make([]decimal.Decimal, days)
	for i := range out {
		part := base
		if remainder.GreaterThan(decimal.Zero) {
			part = part.Add(decimal.NewFromInt(1))
			remainder = remainder.Sub(decimal.NewFromInt(1))
		}
		out[i] = part.Div(decimal.NewFromInt(100)).Round(2)
	}
	return out, nil
}

// IsZero reports an unset budget; trips created without one carry 0.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}
