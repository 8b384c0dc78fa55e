package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"payment-forecast/pkg/apperror"
)

// CurrencyGBP is the only currency the feed is allowed to carry.
const CurrencyGBP = "GBP"

// moneyScale is the fixed number of fractional digits for all amounts.
const moneyScale = 2

// Money is a non-negative payment amount at a fixed two-digit scale.
// Addition is exact; there is no floating-point representation anywhere in
// its lifecycle. The zero value is a valid £0.00 accumulator seed, but a
// Money produced by ParseMoney is always strictly positive.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns a £0.00 value, used as the seed for running totals.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// ParseMoney parses a raw amount field under the given currency code.
// Only GBP is recognised. If the literal contains a decimal point, exactly
// two digits must follow it. The value is rounded half-up to two fractional
// digits and must come out strictly greater than zero.
func ParseMoney(amountText, currencyCode string) (Money, error) {
	if currencyCode != CurrencyGBP {
		return Money{}, apperror.ErrUnsupportedCurrency(currencyCode)
	}

	if pointIndex := strings.IndexByte(amountText, '.'); pointIndex != -1 {
		if pointIndex != len(amountText)-moneyScale-1 {
			return Money{}, apperror.ErrInvalidAmountFormat(amountText, currencyCode)
		}
	}

	parsed, err := decimal.NewFromString(amountText)
	if err != nil {
		return Money{}, apperror.ErrInvalidAmountFormat(amountText, currencyCode)
	}

	parsed = parsed.Round(moneyScale)
	if parsed.Sign() <= 0 {
		return Money{}, apperror.ErrNonPositiveAmount(amountText)
	}

	return Money{amount: parsed}, nil
}

// Add returns the exact sum of m and other at the fixed scale.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String formats the amount as a plain fixed two-decimal literal, e.g.
// "1023.40". Currency symbols are a presentation concern of the report layer.
func (m Money) String() string {
	return m.amount.StringFixed(moneyScale)
}

// MarshalJSON encodes the amount as a fixed two-decimal JSON string so the
// report API never exposes a binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
