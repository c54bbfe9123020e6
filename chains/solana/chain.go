// Package solana implements the Solana chain as a balance source. Routes
// drawing on Solana balances are quoted through the routing backend; local
// execution is not supported, so only the balance capability is wired.
package solana

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ClipFinance/funding-lib/chainmanager"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/ClipFinance/funding-lib/connectionmonitor"
)

// solana represents the base Solana chain implementation.
type solana struct {
	config *types.ChainConfig
	logger *logrus.Logger

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex
	client      *rpc.Client

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewSolanaChain creates a new Solana chain implementation.
//
// Parameters:
// - ctx: the context for managing the request.
// - config: the chain configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Chain: a new Solana chain instance.
// - error: an error if any issue occurs during creation.
func NewSolanaChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error) {
	chain := &solana{
		config: config,
		logger: logger,
		client: rpc.New(config.RpcUrl),
	}

	if err := chain.initMonitor(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	builder := chainmanager.NewChainBuilder(config)
	builder.WithBalanceProvider(chain)

	return builder.Build(), nil
}

// Close should be called when the chain is no longer needed.
// It stops the connection monitor and drops the client.
func (s *solana) Close() {
	s.monitorMutex.Lock()
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.monitorMutex.Unlock()

	s.clientMutex.Lock()
	s.client = nil
	s.clientMutex.Unlock()
}
