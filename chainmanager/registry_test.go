package chainmanager

import (
	"context"
	"testing"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	createErr error
	created   int
}

func (f *stubFactory) CreateChain(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Chain, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return NewChainBuilder(config).Build(), nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func optimismConfig() *types.ChainConfig {
	return &types.ChainConfig{
		Name:      "Optimism",
		ChainType: types.EVM,
		ChainID:   "10",
	}
}

func TestChainRegistry(t *testing.T) {
	t.Run("add and get by chain id", func(t *testing.T) {
		factory := &stubFactory{}
		registry := NewChainRegistry(factory, testLogger())

		require.NoError(t, registry.Add(context.Background(), optimismConfig()))
		assert.Equal(t, 1, factory.created)

		chain := registry.Get("10")
		require.NotNil(t, chain)
		assert.Equal(t, "Optimism", chain.GetConfig().Name)
		assert.Nil(t, registry.Get("137"))
	})

	t.Run("duplicate chain id rejected", func(t *testing.T) {
		factory := &stubFactory{}
		registry := NewChainRegistry(factory, testLogger())

		require.NoError(t, registry.Add(context.Background(), optimismConfig()))
		err := registry.Add(context.Background(), optimismConfig())
		assert.ErrorIs(t, err, funderrors.ErrChainExists)
		assert.Equal(t, 1, factory.created)
	})

	t.Run("missing factory rejected", func(t *testing.T) {
		registry := NewChainRegistry(nil, testLogger())
		err := registry.Add(context.Background(), optimismConfig())
		assert.ErrorIs(t, err, funderrors.ErrFactoryNotProvided)
	})

	t.Run("factory failure is not registered", func(t *testing.T) {
		factory := &stubFactory{createErr: errors.New("dial failed")}
		registry := NewChainRegistry(factory, testLogger())

		err := registry.Add(context.Background(), optimismConfig())
		require.Error(t, err)
		assert.Nil(t, registry.Get("10"))
	})

	t.Run("remove frees the chain id", func(t *testing.T) {
		factory := &stubFactory{}
		registry := NewChainRegistry(factory, testLogger())

		require.NoError(t, registry.Add(context.Background(), optimismConfig()))
		registry.Remove("10")
		assert.Nil(t, registry.Get("10"))
		require.NoError(t, registry.Add(context.Background(), optimismConfig()))
	})
}

func TestChainCapabilityGaps(t *testing.T) {
	chain := NewChainBuilder(optimismConfig()).Build()
	ctx := context.Background()

	_, err := chain.GetTokenBalance(ctx, "0x1", types.ZeroAddress)
	assert.ErrorIs(t, err, funderrors.ErrNotImplemented)

	_, err = chain.GetAllowance(ctx, "0x2", "0x1", "0x3")
	assert.ErrorIs(t, err, funderrors.ErrNotImplemented)

	_, err = chain.TransactionReceipt(ctx, "0xabc")
	assert.ErrorIs(t, err, funderrors.ErrNotImplemented)

	_, err = chain.EstimateGas(ctx, "0x2", nil, nil)
	assert.ErrorIs(t, err, funderrors.ErrNotImplemented)

	assert.Nil(t, chain.Wallet())
}
