package walletguard

import (
	"context"
	"testing"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	chainIDHex string
	switchErr  error
	requests   []string
}

func (p *fakeProvider) Request(ctx context.Context, method string, params ...interface{}) (interface{}, error) {
	p.requests = append(p.requests, method)
	switch method {
	case "eth_chainId":
		return p.chainIDHex, nil
	case "wallet_switchEthereumChain":
		if p.switchErr != nil {
			return nil, p.switchErr
		}
		return nil, nil
	default:
		return nil, errors.Errorf("unexpected method %s", method)
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestEnsureChain(t *testing.T) {
	t.Run("matching chain needs no switch", func(t *testing.T) {
		provider := &fakeProvider{chainIDHex: "0xa"} // chain 10
		guard := NewGuard(provider, testLogger())

		require.NoError(t, guard.EnsureChain(context.Background(), "10"))
		assert.Equal(t, []string{"eth_chainId"}, provider.requests)
	})

	t.Run("mismatch triggers a switch request", func(t *testing.T) {
		provider := &fakeProvider{chainIDHex: "0x1"}
		guard := NewGuard(provider, testLogger())

		require.NoError(t, guard.EnsureChain(context.Background(), "137"))
		assert.Equal(t, []string{"eth_chainId", "wallet_switchEthereumChain"}, provider.requests)
	})

	t.Run("switch rejection is a hard stop", func(t *testing.T) {
		provider := &fakeProvider{
			chainIDHex: "0x1",
			switchErr:  errors.New("user rejected the request"),
		}
		guard := NewGuard(provider, testLogger())

		err := guard.EnsureChain(context.Background(), "137")
		assert.ErrorIs(t, err, funderrors.ErrSwitchRejected)
	})

	t.Run("nil provider cannot switch", func(t *testing.T) {
		guard := NewGuard(nil, testLogger())
		err := guard.EnsureChain(context.Background(), "1")
		assert.ErrorIs(t, err, funderrors.ErrSwitchNotSupported)
	})

	t.Run("invalid required chain id rejected", func(t *testing.T) {
		guard := NewGuard(&fakeProvider{chainIDHex: "0x1"}, testLogger())
		err := guard.EnsureChain(context.Background(), "solana-mainnet")
		assert.ErrorIs(t, err, funderrors.ErrInvalidChainID)
	})
}
