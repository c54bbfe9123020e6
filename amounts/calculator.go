// Package amounts converts a requested target amount into required source
// amounts per candidate source token, applying USD price ratios and slippage.
package amounts

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// BaseSlippagePercent is the fixed slippage applied to every computed source
// amount, in percent.
const BaseSlippagePercent = 2

var baseSlippage = decimal.New(BaseSlippagePercent, -2)

// Calculator derives source amounts for funding candidates.
type Calculator struct {
	baseSlippage decimal.Decimal
}

// NewCalculator creates a Calculator with the default base slippage.
func NewCalculator() *Calculator {
	return &Calculator{baseSlippage: baseSlippage}
}

// BaseSlippage returns the fixed slippage fraction.
func (c *Calculator) BaseSlippage() decimal.Decimal {
	return c.baseSlippage
}

// RequiredSourceAmount computes the source amount needed to obtain
// targetAmount of the target token, from USD unit prices:
//
//	source = targetAmount * targetUSD / sourceUSD * (1 + baseSlippage + extraBuffer)
//
// extraBuffer widens the ask after an under-quote. The result is formatted to
// the source token's decimal precision, ready to be sent to the backend.
func (c *Calculator) RequiredSourceAmount(
	targetAmount decimal.Decimal,
	targetUSDPrice decimal.Decimal,
	sourceUSDPrice decimal.Decimal,
	extraBuffer decimal.Decimal,
	sourceDecimals int32,
) (string, error) {
	if sourceUSDPrice.IsZero() {
		return "", errors.New("source token has no usd price")
	}
	if targetUSDPrice.IsZero() {
		return "", errors.New("target token has no usd price")
	}

	multiplier := decimal.New(1, 0).Add(c.baseSlippage).Add(extraBuffer)
	source := targetAmount.Mul(targetUSDPrice).Div(sourceUSDPrice).Mul(multiplier)

	return source.StringFixed(sourceDecimals), nil
}

// SourceAmountFromRate recomputes the source amount from an already obtained
// quote's realized exchange rate (target units per source unit), applying only
// the base slippage. This is the second-attempt path after an under-quote.
func (c *Calculator) SourceAmountFromRate(
	targetAmount decimal.Decimal,
	exchangeRate decimal.Decimal,
	sourceDecimals int32,
) (string, error) {
	if exchangeRate.IsZero() {
		return "", errors.New("quote has zero exchange rate")
	}

	multiplier := decimal.New(1, 0).Add(c.baseSlippage)
	source := targetAmount.Div(exchangeRate).Mul(multiplier)

	return source.StringFixed(sourceDecimals), nil
}

// ParseUnits converts a formatted amount into smallest units for the given
// decimals. Comparisons between quoted and required amounts are done on the
// returned integers.
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse amount")
	}
	return d.Shift(decimals).Truncate(0).BigInt(), nil
}

// FormatUnits converts a smallest-unit integer into a formatted decimal
// amount for the given decimals.
func FormatUnits(units *big.Int, decimals int32) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -decimals)
}
