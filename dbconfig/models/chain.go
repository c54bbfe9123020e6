package models

import (
	"time"

	"github.com/ClipFinance/funding-lib/common/types"
)

// Chain is one row of the chains table.
type Chain struct {
	ID             int64
	ChainID        string
	Name           string
	Type           types.ChainType
	RpcUrl         string
	NativeSymbol   string
	NativeDecimals int32
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Config converts the row into the chain configuration consumed by the
// chain registry.
func (c Chain) Config() *types.ChainConfig {
	return &types.ChainConfig{
		Name:           c.Name,
		ChainType:      c.Type,
		ChainID:        c.ChainID,
		RpcUrl:         c.RpcUrl,
		NativeSymbol:   c.NativeSymbol,
		NativeDecimals: c.NativeDecimals,
	}
}
