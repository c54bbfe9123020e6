package chainmanager

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
)

// ChainFactory creates chain implementations from their configuration.
type ChainFactory interface {
	CreateChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error)
}

type blockchainRegistry struct {
	logger       *logrus.Logger
	chains       map[string]types.Chain
	chainsMutex  sync.RWMutex
	factory      ChainFactory
	factoryMutex sync.RWMutex
}

// NewChainRegistry creates a registry that builds chains through the given
// factory and keys them by chain id.
//
// Parameters:
// - factory: the chain factory used by Add.
// - logger: the logger instance for logging.
//
// Returns:
// - types.ChainRegistry: the new registry instance.
func NewChainRegistry(factory ChainFactory, logger *logrus.Logger) types.ChainRegistry {
	return &blockchainRegistry{
		chains:  make(map[string]types.Chain),
		factory: factory,
		logger:  logger,
	}
}

func (r *blockchainRegistry) Add(ctx context.Context, config *types.ChainConfig) error {
	r.chainsMutex.RLock()
	_, exists := r.chains[config.ChainID]
	r.chainsMutex.RUnlock()
	if exists {
		return funderrors.ErrChainExists
	}

	// Lock factory for reading to prevent changes during chain creation.
	r.factoryMutex.RLock()
	factory := r.factory
	r.factoryMutex.RUnlock()

	if factory == nil {
		return funderrors.ErrFactoryNotProvided
	}

	chain, err := factory.CreateChain(ctx, config, r.logger)
	if err != nil {
		return err
	}

	r.chainsMutex.Lock()
	r.chains[config.ChainID] = chain
	r.chainsMutex.Unlock()

	r.logger.WithFields(logrus.Fields{
		"chain":   config.Name,
		"chainId": config.ChainID,
		"type":    config.ChainType.String(),
	}).Info("Chain registered")

	return nil
}

func (r *blockchainRegistry) Get(chainID string) types.Chain {
	r.chainsMutex.RLock()
	chain := r.chains[chainID]
	r.chainsMutex.RUnlock()
	return chain
}

func (r *blockchainRegistry) Remove(chainID string) {
	r.chainsMutex.Lock()
	delete(r.chains, chainID)
	r.chainsMutex.Unlock()
}
