package discovery

import (
	"context"
	"sync"

	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/sirupsen/logrus"
)

// ScanBalances reads fresh balances for the given address across every token
// whose chain is registered. Reads run concurrently per token; tokens on
// unregistered chains and failed reads are skipped with a warning. Zero
// balances are dropped since they can never fund anything.
func ScanBalances(ctx context.Context, registry types.ChainRegistry, tokens []types.Token, address string, logger *logrus.Logger) []types.Balance {
	results := make([]*types.Balance, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		chain := registry.Get(token.ChainID)
		if chain == nil {
			continue
		}

		wg.Add(1)
		go func(idx int, token types.Token, chain types.Chain) {
			defer wg.Done()

			amount, err := chain.GetTokenBalance(ctx, address, token.Address)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"chain": token.ChainID,
					"token": token.Symbol,
				}).WithError(err).Warn("Failed to read source balance")
				return
			}
			if amount == nil || amount.Sign() == 0 {
				return
			}

			results[idx] = &types.Balance{Token: token, Amount: amount}
		}(i, token, chain)
	}
	wg.Wait()

	balances := make([]types.Balance, 0, len(tokens))
	for _, b := range results {
		if b != nil {
			balances = append(balances, *b)
		}
	}
	return balances
}
