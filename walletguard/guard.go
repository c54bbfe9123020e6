// Package walletguard verifies and switches the wallet's active network
// before a route is submitted on its source chain.
package walletguard

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Guard compares the provider's reported chain against a required chain and
// requests a network switch when they differ. Switch rejection and provider
// incapability are hard stops, never retried.
type Guard struct {
	provider types.WalletProvider
	logger   *logrus.Logger
}

// NewGuard creates a chain switch guard for the given wallet provider.
func NewGuard(provider types.WalletProvider, logger *logrus.Logger) *Guard {
	return &Guard{provider: provider, logger: logger}
}

// EnsureChain makes the wallet's active network match chainID, switching if
// necessary.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the required chain id, in decimal form.
//
// Returns:
// - error: ErrSwitchNotSupported when the provider cannot switch,
//   ErrSwitchRejected when the wallet refuses, nil when the chains match.
func (g *Guard) EnsureChain(ctx context.Context, chainID string) error {
	if g.provider == nil {
		return funderrors.ErrSwitchNotSupported
	}

	required, ok := new(big.Int).SetString(chainID, 10)
	if !ok {
		return errors.Wrapf(funderrors.ErrInvalidChainID, "chain id %q", chainID)
	}

	current, err := g.activeChain(ctx)
	if err != nil {
		return err
	}

	if current.Cmp(required) == 0 {
		return nil
	}

	g.logger.WithFields(logrus.Fields{
		"current":  current.String(),
		"required": required.String(),
	}).Info("Requesting wallet network switch")

	_, err = g.provider.Request(ctx, "wallet_switchEthereumChain", map[string]string{
		"chainId": fmt.Sprintf("0x%x", required),
	})
	if err != nil {
		return errors.Wrap(funderrors.ErrSwitchRejected, err.Error())
	}

	return nil
}

// activeChain queries the provider for its current chain id.
func (g *Guard) activeChain(ctx context.Context) (*big.Int, error) {
	result, err := g.provider.Request(ctx, "eth_chainId")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query wallet chain id")
	}

	hex, ok := result.(string)
	if !ok {
		return nil, errors.Errorf("unexpected eth_chainId result %T", result)
	}

	id, ok := new(big.Int).SetString(strings.TrimPrefix(hex, "0x"), 16)
	if !ok {
		return nil, errors.Wrapf(funderrors.ErrInvalidChainID, "eth_chainId returned %q", hex)
	}

	return id, nil
}
