package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ClipFinance/funding-lib/common/types"
)

// Token is one row of the chain_tokens table.
type Token struct {
	ID               int64
	ChainID          string
	Address          string
	Symbol           string
	Decimals         int32
	Native           bool
	USDPrice         decimal.Decimal
	Balance          string
	BalanceFormatted decimal.Decimal
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Asset converts the row into the token value used by discovery.
func (t Token) Asset() types.Token {
	address := t.Address
	if t.Native && address == "" {
		address = types.ZeroAddress
	}
	return types.Token{
		ChainID:  t.ChainID,
		Address:  address,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
		USDPrice: t.USDPrice,
	}
}
