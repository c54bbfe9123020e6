package chainmanager

import (
	"github.com/ClipFinance/funding-lib/common/types"
)

// ChainBuilder is a builder pattern implementation for chain configuration.
// It allows setting the capabilities a chain implementation actually supports:
// balance reads, allowance reads, receipt lookups, gas estimation and a
// locally backed wallet signer.
type ChainBuilder struct {
	config    *types.ChainConfig    // Chain configuration.
	balances  types.BalanceProvider // Balance provider implementation.
	allowance types.AllowanceReader // Allowance reader implementation.
	receipts  types.ReceiptProvider // Receipt provider implementation.
	estimator types.GasEstimator    // Gas estimator implementation.
	wallet    types.WalletSigner    // Locally backed wallet signer.
}

// NewChainBuilder creates a new chain builder instance.
//
// Parameters:
// - config: the chain configuration.
//
// Returns:
// - *ChainBuilder: a new ChainBuilder instance.
func NewChainBuilder(config *types.ChainConfig) *ChainBuilder {
	return &ChainBuilder{
		config: config,
	}
}

// WithBalanceProvider sets the balance provider implementation.
//
// Parameters:
// - provider: the balance provider implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithBalanceProvider(provider types.BalanceProvider) *ChainBuilder {
	b.balances = provider
	return b
}

// WithAllowanceReader sets the allowance reader implementation.
//
// Parameters:
// - reader: the allowance reader implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithAllowanceReader(reader types.AllowanceReader) *ChainBuilder {
	b.allowance = reader
	return b
}

// WithReceiptProvider sets the receipt provider implementation.
//
// Parameters:
// - provider: the receipt provider implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithReceiptProvider(provider types.ReceiptProvider) *ChainBuilder {
	b.receipts = provider
	return b
}

// WithGasEstimator sets the gas estimator implementation.
//
// Parameters:
// - estimator: the gas estimator implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithGasEstimator(estimator types.GasEstimator) *ChainBuilder {
	b.estimator = estimator
	return b
}

// WithWallet sets the locally backed wallet signer.
//
// Parameters:
// - wallet: the wallet signer implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithWallet(wallet types.WalletSigner) *ChainBuilder {
	b.wallet = wallet
	return b
}

// Build creates a new chain instance with the configured implementations.
//
// Returns:
// - types.Chain: a new Chain instance with the configured implementations.
func (b *ChainBuilder) Build() types.Chain {
	return NewChain(b.config, b.balances, b.allowance, b.receipts, b.estimator, b.wallet)
}
