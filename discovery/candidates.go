package discovery

import (
	"strings"

	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/sirupsen/logrus"
)

// FindToken returns the token matching the given chain id and address from
// the token list. Address comparison is case-insensitive.
func FindToken(tokens []types.Token, chainID string, address string) (types.Token, bool) {
	for _, token := range tokens {
		if token.ChainID == chainID && strings.EqualFold(token.Address, address) {
			return token, true
		}
	}
	return types.Token{}, false
}

// buildCandidates turns the source balances into amount-data candidates for
// the given target. It returns the candidates together with the number of
// balances that were eligible before the sufficiency gate, which is what
// distinguishes "insufficient funds" from "no balances at all" downstream.
func (e *Engine) buildCandidates(params *Params, target types.Token) ([]types.AmountData, int) {
	candidates := make([]types.AmountData, 0, len(params.Balances))
	eligible := 0

	for _, balance := range params.Balances {
		// The target asset itself can never fund the target.
		if balance.Token.SameAsset(target) {
			continue
		}

		// Without swaps, a same-chain balance would need a swap-only route.
		if !params.SwapsAllowed && balance.Token.ChainID == target.ChainID {
			continue
		}

		eligible++

		sourceAmount, err := e.calc.RequiredSourceAmount(
			params.TargetAmount,
			target.USDPrice,
			balance.Token.USDPrice,
			params.ExtraBuffer,
			balance.Token.Decimals,
		)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"chain": balance.Token.ChainID,
				"token": balance.Token.Symbol,
			}).WithError(err).Warn("Skipping balance without usable price data")
			continue
		}

		required, err := types.AmountData{
			SourceToken:  balance.Token,
			SourceAmount: sourceAmount,
		}.RequiredSourceUnits()
		if err != nil {
			continue
		}

		// The available balance has to strictly exceed the required amount.
		if balance.Amount == nil || balance.Amount.Cmp(required) <= 0 {
			continue
		}

		candidates = append(candidates, types.AmountData{
			SourceToken:    balance.Token,
			SourceAmount:   sourceAmount,
			TargetToken:    target,
			TargetAmount:   params.TargetAmount.String(),
			SourceBalance:  balance.Amount,
			SlippageBuffer: params.ExtraBuffer,
		})
	}

	return candidates, eligible
}
