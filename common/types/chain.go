package types

import (
	"context"
	"math/big"
)

// ChainConfig holds the configuration for a specific chain implementation.
//
// Fields:
// - Name: the name of the chain.
// - ChainType: the type of the chain.
// - ChainID: the identifier of the chain.
// - RpcUrl: the URL for the chain's RPC endpoint.
// - NativeSymbol: the symbol of the chain's native asset.
// - NativeDecimals: the decimals of the chain's native asset.
// - PrivateKey: an optional private key enabling local transaction submission.
type ChainConfig struct {
	Name           string
	ChainType      ChainType
	ChainID        string
	RpcUrl         string
	NativeSymbol   string
	NativeDecimals int32
	PrivateKey     string
}

// BalanceProvider provides token balance reading functionality.
type BalanceProvider interface {
	// GetTokenBalance returns the raw balance of a token for the given address.
	// For native balances, pass tokenAddress as empty string or ZeroAddress.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - address: the address to check the balance for.
	// - tokenAddress: the token contract address.
	//
	// Returns:
	// - *big.Int: the raw token balance.
	// - error: an error if the balance read fails.
	GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error)
}

// AllowanceReader provides ERC-20 allowance reading functionality.
type AllowanceReader interface {
	// GetAllowance returns the spending limit the owner has granted to the
	// spender for the given token contract.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - tokenAddress: the token contract address.
	// - owner: the token owner address.
	// - spender: the spender contract address.
	//
	// Returns:
	// - *big.Int: the raw allowance.
	// - error: an error if the allowance read fails.
	GetAllowance(ctx context.Context, tokenAddress string, owner string, spender string) (*big.Int, error)
}

// ReceiptProvider provides transaction receipt lookup functionality.
type ReceiptProvider interface {
	// TransactionReceipt returns the mined receipt for the given hash, or an
	// error wrapping ErrReceiptNotFound while the transaction is pending.
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// GasEstimator provides gas estimation functionality.
type GasEstimator interface {
	// EstimateGas estimates the gas required for a transaction.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - to: the recipient address of the transaction.
	// - value: the native amount to send with the transaction.
	// - data: the input data for the transaction.
	//
	// Returns:
	// - uint64: the estimated gas amount.
	// - error: an error if the gas estimation fails.
	EstimateGas(ctx context.Context, to string, value *big.Int, data []byte) (uint64, error)
}

// Chain combines the chain-specific capabilities this library consumes.
type Chain interface {
	BalanceProvider
	AllowanceReader
	ReceiptProvider
	GasEstimator

	// GetConfig returns the chain configuration.
	GetConfig() *ChainConfig

	// Wallet returns a locally backed wallet signer for the chain, or nil if
	// the chain was configured without a private key or does not support
	// transaction submission.
	Wallet() WalletSigner
}

// ChainRegistry manages multiple chains keyed by chain id.
type ChainRegistry interface {
	// Add creates and registers a chain from its configuration.
	Add(ctx context.Context, config *ChainConfig) error

	// Get retrieves a chain by its id, or nil if not registered.
	Get(chainID string) Chain

	// Remove removes a chain by its id.
	Remove(chainID string)
}
