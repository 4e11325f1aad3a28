package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// amountPrecision is the fixed number of decimal places for quoted amounts.
const amountPrecision = 4

// DefaultSlippage is the buffer added on top of the spot conversion to
// compensate for price drift between quote and settlement.
var DefaultSlippage = decimal.NewFromFloat(0.02)

// ErrInvalidRate is returned when the conversion rate is not positive.
var ErrInvalidRate = errors.New("invalid rate: must be positive")

// SettlementAmount converts a USD price into a target on-chain amount:
// (usd / rate) * (1 + slippage), rounded to 4 places. Deterministic, no
// side effects.
func SettlementAmount(usd, rate, slippage decimal.Decimal) (decimal.Decimal, error) {
	if rate.Sign() <= 0 {
		return decimal.Zero, ErrInvalidRate
	}
	base := usd.Div(rate)
	return base.Mul(decimal.NewFromInt(1).Add(slippage)).Round(amountPrecision), nil
}
