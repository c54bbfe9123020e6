package amounts

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredSourceAmount(t *testing.T) {
	calc := NewCalculator()

	t.Run("usd ratio with base slippage", func(t *testing.T) {
		// 100 USDC at $1 from ETH at $2000: 0.05 ETH before slippage.
		got, err := calc.RequiredSourceAmount(
			decimal.NewFromInt(100),
			decimal.NewFromInt(1),
			decimal.NewFromInt(2000),
			decimal.Zero,
			18,
		)
		require.NoError(t, err)
		want := decimal.RequireFromString("0.051") // 0.05 * 1.02
		assert.True(t, decimal.RequireFromString(got).Equal(want), "got %s", got)
	})

	t.Run("extra buffer widens the ask", func(t *testing.T) {
		got, err := calc.RequiredSourceAmount(
			decimal.NewFromInt(100),
			decimal.NewFromInt(1),
			decimal.NewFromInt(2000),
			decimal.RequireFromString("0.015"),
			18,
		)
		require.NoError(t, err)
		want := decimal.RequireFromString("0.05175") // 0.05 * 1.035
		assert.True(t, decimal.RequireFromString(got).Equal(want), "got %s", got)
	})

	t.Run("strictly increases with extra buffer", func(t *testing.T) {
		buffers := []string{"0", "0.005", "0.01", "0.02", "0.05", "0.1"}
		prev := decimal.Zero
		for _, b := range buffers {
			got, err := calc.RequiredSourceAmount(
				decimal.NewFromInt(250),
				decimal.RequireFromString("0.999"),
				decimal.RequireFromString("1743.21"),
				decimal.RequireFromString(b),
				18,
			)
			require.NoError(t, err)
			current := decimal.RequireFromString(got)
			assert.True(t, current.GreaterThan(prev), "buffer %s should strictly increase amount", b)
			prev = current
		}
	})

	t.Run("formatted to source decimals", func(t *testing.T) {
		got, err := calc.RequiredSourceAmount(
			decimal.NewFromInt(1),
			decimal.NewFromInt(3),
			decimal.NewFromInt(7),
			decimal.Zero,
			6,
		)
		require.NoError(t, err)
		// 3/7 * 1.02 is a repeating decimal; the output carries exactly six places.
		assert.Equal(t, "0.437143", got)
	})

	t.Run("zero source price rejected", func(t *testing.T) {
		_, err := calc.RequiredSourceAmount(
			decimal.NewFromInt(100),
			decimal.NewFromInt(1),
			decimal.Zero,
			decimal.Zero,
			18,
		)
		assert.Error(t, err)
	})
}

func TestSourceAmountFromRate(t *testing.T) {
	calc := NewCalculator()

	t.Run("second attempt uses realized rate and base slippage only", func(t *testing.T) {
		// Rate 2000 target units per source unit.
		got, err := calc.SourceAmountFromRate(
			decimal.NewFromInt(100),
			decimal.NewFromInt(2000),
			18,
		)
		require.NoError(t, err)
		want := decimal.RequireFromString("0.051")
		assert.True(t, decimal.RequireFromString(got).Equal(want), "got %s", got)
	})

	t.Run("zero rate rejected", func(t *testing.T) {
		_, err := calc.SourceAmountFromRate(decimal.NewFromInt(100), decimal.Zero, 18)
		assert.Error(t, err)
	})
}

func TestUnitsConversions(t *testing.T) {
	t.Run("parse and format round", func(t *testing.T) {
		units, err := ParseUnits("1.5", 6)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1500000), units)
		assert.True(t, FormatUnits(units, 6).Equal(decimal.RequireFromString("1.5")))
	})

	t.Run("sub-unit dust truncated", func(t *testing.T) {
		units, err := ParseUnits("0.1234567", 6)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(123456), units)
	})

	t.Run("nil units format to zero", func(t *testing.T) {
		assert.True(t, FormatUnits(nil, 18).IsZero())
	})
}
