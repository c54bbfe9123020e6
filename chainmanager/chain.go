package chainmanager

import (
	"context"
	"math/big"
	"sync"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
)

// Chain implements the types.Chain interface with thread-safe access to its
// capability implementations. A capability left unset returns
// ErrNotImplemented instead of panicking, so balance-only chains can
// participate in discovery without supporting execution.
type Chain struct {
	config    *types.ChainConfig    // Chain configuration.
	balances  types.BalanceProvider // Balance provider implementation.
	allowance types.AllowanceReader // Allowance reader implementation.
	receipts  types.ReceiptProvider // Receipt provider implementation.
	estimator types.GasEstimator    // Gas estimator implementation.
	wallet    types.WalletSigner    // Locally backed wallet signer.

	// Mutexes for thread-safe access to capabilities.
	balancesMutex  sync.RWMutex // Mutex for balance provider.
	allowanceMutex sync.RWMutex // Mutex for allowance reader.
	receiptsMutex  sync.RWMutex // Mutex for receipt provider.
	estimatorMutex sync.RWMutex // Mutex for gas estimator.
	walletMutex    sync.RWMutex // Mutex for wallet signer.
}

// NewChain creates a new Chain instance.
//
// Parameters:
// - config: the chain configuration.
// - balances: the balance provider implementation.
// - allowance: the allowance reader implementation.
// - receipts: the receipt provider implementation.
// - estimator: the gas estimator implementation.
// - wallet: the locally backed wallet signer, or nil.
//
// Returns:
// - *Chain: a new Chain instance.
func NewChain(
	config *types.ChainConfig,
	balances types.BalanceProvider,
	allowance types.AllowanceReader,
	receipts types.ReceiptProvider,
	estimator types.GasEstimator,
	wallet types.WalletSigner,
) *Chain {
	return &Chain{
		config:    config,
		balances:  balances,
		allowance: allowance,
		receipts:  receipts,
		estimator: estimator,
		wallet:    wallet,
	}
}

// GetTokenBalance reads a token balance with thread-safe access.
// It locks the balances mutex for reading to ensure safe concurrent access.
// If the balance provider is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - address: the address to check the balance for.
// - tokenAddress: the token contract address.
//
// Returns:
// - *big.Int: the raw token balance.
// - error: an error if the provider is not implemented or the read fails.
func (c *Chain) GetTokenBalance(ctx context.Context, address string, tokenAddress string) (*big.Int, error) {
	c.balancesMutex.RLock()
	provider := c.balances
	c.balancesMutex.RUnlock()

	if provider == nil {
		return nil, funderrors.ErrNotImplemented
	}

	return provider.GetTokenBalance(ctx, address, tokenAddress)
}

// GetAllowance reads an ERC-20 allowance with thread-safe access.
// It locks the allowance mutex for reading to ensure safe concurrent access.
// If the allowance reader is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - tokenAddress: the token contract address.
// - owner: the token owner address.
// - spender: the spender contract address.
//
// Returns:
// - *big.Int: the raw allowance.
// - error: an error if the reader is not implemented or the read fails.
func (c *Chain) GetAllowance(ctx context.Context, tokenAddress string, owner string, spender string) (*big.Int, error) {
	c.allowanceMutex.RLock()
	reader := c.allowance
	c.allowanceMutex.RUnlock()

	if reader == nil {
		return nil, funderrors.ErrNotImplemented
	}

	return reader.GetAllowance(ctx, tokenAddress, owner, spender)
}

// TransactionReceipt looks up a mined receipt with thread-safe access.
// It locks the receipts mutex for reading to ensure safe concurrent access.
// If the receipt provider is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - txHash: the transaction hash to look up.
//
// Returns:
// - *types.Receipt: the mined receipt.
// - error: an error if the provider is not implemented or the lookup fails.
func (c *Chain) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	c.receiptsMutex.RLock()
	provider := c.receipts
	c.receiptsMutex.RUnlock()

	if provider == nil {
		return nil, funderrors.ErrNotImplemented
	}

	return provider.TransactionReceipt(ctx, txHash)
}

// EstimateGas estimates transaction gas with thread-safe access.
// It locks the estimator mutex for reading to ensure safe concurrent access.
// If the estimator is not implemented, it returns an error.
//
// Parameters:
// - ctx: the context for managing the request.
// - to: the recipient address of the transaction.
// - value: the amount of value to be sent in the transaction.
// - data: the input data for the transaction.
//
// Returns:
// - uint64: the estimated gas amount.
// - error: an error if the estimator is not implemented or estimation fails.
func (c *Chain) EstimateGas(ctx context.Context, to string, value *big.Int, data []byte) (uint64, error) {
	c.estimatorMutex.RLock()
	estimator := c.estimator
	c.estimatorMutex.RUnlock()

	if estimator == nil {
		return 0, funderrors.ErrNotImplemented
	}

	return estimator.EstimateGas(ctx, to, value, data)
}

// GetConfig returns the chain configuration.
//
// Returns:
// - *types.ChainConfig: the chain configuration instance.
func (c *Chain) GetConfig() *types.ChainConfig {
	return c.config
}

// Wallet returns the locally backed wallet signer, or nil when the chain was
// configured without one.
func (c *Chain) Wallet() types.WalletSigner {
	c.walletMutex.RLock()
	defer c.walletMutex.RUnlock()
	return c.wallet
}
