package types

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ZeroAddress is the sentinel contract address used for a chain's native asset.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// Token describes a fungible asset on a specific chain.
//
// Fields:
// - ChainID: the identifier of the chain the token lives on.
// - Address: the token contract address, or the zero-address sentinel for the native asset.
// - Symbol: the display symbol of the token.
// - Decimals: the number of decimal places of the token's smallest unit.
// - USDPrice: the current USD unit price. Volatile, refreshed per quote cycle.
type Token struct {
	ChainID  string
	Address  string
	Symbol   string
	Decimals int32
	USDPrice decimal.Decimal
}

// IsNative reports whether the token is the chain's native asset.
func (t Token) IsNative() bool {
	return t.Address == "" || strings.EqualFold(t.Address, ZeroAddress)
}

// SameAsset reports whether two tokens refer to the same asset.
// Identity is (chainID, address), address compared case-insensitively.
func (t Token) SameAsset(other Token) bool {
	return t.ChainID == other.ChainID && strings.EqualFold(t.Address, other.Address)
}

// Balance is a point-in-time holding of a token by the source wallet.
// It becomes stale as soon as a transaction is submitted.
type Balance struct {
	Token  Token
	Amount *big.Int
}

// Formatted returns the balance scaled down by the token's decimals.
func (b Balance) Formatted() decimal.Decimal {
	if b.Amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(b.Amount, -b.Token.Decimals)
}
