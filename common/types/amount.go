package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountData is one discovery candidate: how much of a source token has to be
// spent to end up with the requested target amount. Derived data, recomputed
// whenever the target amount, target token or balances change; never persisted.
//
// Fields:
// - SourceToken: the token to draw from.
// - SourceAmount: the required source amount, formatted to the source token's decimals.
// - TargetToken: the token the user wants to receive.
// - TargetAmount: the requested target amount, formatted to the target token's decimals.
// - SourceBalance: the raw balance available for the source token at computation time.
// - SlippageBuffer: the extra buffer applied on top of the base slippage.
type AmountData struct {
	SourceToken    Token
	SourceAmount   string
	TargetToken    Token
	TargetAmount   string
	SourceBalance  *big.Int
	SlippageBuffer decimal.Decimal
}

// RequiredSourceUnits returns the source amount in the source token's smallest units.
func (a AmountData) RequiredSourceUnits() (*big.Int, error) {
	d, err := decimal.NewFromString(a.SourceAmount)
	if err != nil {
		return nil, err
	}
	return d.Shift(a.SourceToken.Decimals).BigInt(), nil
}

// TargetUnits returns the target amount in the target token's smallest units.
// Quoted-versus-requested comparisons are done on these integers, never on floats.
func (a AmountData) TargetUnits() (*big.Int, error) {
	d, err := decimal.NewFromString(a.TargetAmount)
	if err != nil {
		return nil, err
	}
	return d.Shift(a.TargetToken.Decimals).BigInt(), nil
}
