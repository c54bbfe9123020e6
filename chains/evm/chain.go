// Package evm implements the EVM chain capabilities: balance and allowance
// reads, receipt lookups, gas estimation and an optional locally backed
// wallet signer.
package evm

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ClipFinance/funding-lib/chainmanager"
	"github.com/ClipFinance/funding-lib/chains/evm/signer"
	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/ClipFinance/funding-lib/connectionmonitor"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// gasLimitHeadroom is the percentage applied on top of the gas estimate.
	gasLimitHeadroom = 110
)

// evm represents the base EVM chain implementation.
type evm struct {
	config  *types.ChainConfig // Chain configuration.
	logger  *logrus.Logger     // Logger for logging events.
	chainID *big.Int           // Numeric chain id parsed from the configuration.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex      // Mutex for client.
	client      *ethclient.Client // Ethereum client.

	signerMutex sync.RWMutex  // Mutex for signer.
	signer      signer.Signer // Signer for locally submitted transactions.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewEvmChain creates a new EVM chain implementation.
//
// Parameters:
// - ctx: the context for managing the request.
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Chain: a new EVM chain instance.
// - error: an error if any issue occurs during creation.
func NewEvmChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error) {
	chainID, ok := new(big.Int).SetString(config.ChainID, 10)
	if !ok {
		return nil, errors.Wrap(funderrors.ErrInvalidChainID, config.ChainID)
	}

	client, err := ethclient.Dial(config.RpcUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	chain := &evm{
		config:  config,
		logger:  logger,
		chainID: chainID,
		client:  client,
	}

	if err := chain.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	builder := chainmanager.NewChainBuilder(config)
	builder.WithBalanceProvider(chain)
	builder.WithAllowanceReader(chain)
	builder.WithReceiptProvider(chain)
	builder.WithGasEstimator(chain)

	if config.PrivateKey != "" {
		privKey, err := crypto.HexToECDSA(config.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse private key")
		}

		txSigner, err := signer.NewSigner(privKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create signer")
		}

		chain.signerMutex.Lock()
		chain.signer = txSigner
		chain.signerMutex.Unlock()

		builder.WithWallet(&wallet{chain: chain})
	}

	return builder.Build(), nil
}

// Close should be called when the chain is no longer needed.
// It stops the connection monitor and closes the client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.monitorMutex.Unlock()

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// GetClient returns the Ethereum client.
//
// Returns:
// - *ethclient.Client: the Ethereum client.
func (e *evm) GetClient() *ethclient.Client {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return e.client
}
