// Package discovery finds funding routes for a target amount by quoting the
// routing backend against every eligible source balance.
package discovery

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ClipFinance/funding-lib/amounts"
	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/ClipFinance/funding-lib/retry"
	"github.com/ClipFinance/funding-lib/selector"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBulkNumber is the number of quote requests issued concurrently
	// within one batch.
	DefaultBulkNumber = 5
	// DefaultBatchDelay is the pause between batches, a coarse rate limit
	// against the routing backend.
	DefaultBatchDelay = time.Second

	// quoteRetryInterval is the delay between retries of a single quote fetch.
	quoteRetryInterval = time.Second
	// quoteRetryAttempts bounds the retries of a single quote fetch.
	quoteRetryAttempts = 5
)

// Config tunes the discovery batching behavior. Zero values fall back to the
// defaults.
type Config struct {
	BulkNumber int
	BatchDelay time.Duration
}

// Params are the inputs of one discovery cycle.
//
// Fields:
// - Tokens: the full token list, used to resolve the target token.
// - Balances: the source wallet's balances across all chains.
// - TargetChainID: the chain the user wants funds on.
// - TargetTokenAddress: the token the user wants to receive.
// - TargetAmount: the requested amount, in formatted target token units.
// - SourceAddress: the address funds are drawn from.
// - DestinationAddress: the address funds are delivered to.
// - SwapsAllowed: whether routes may contain swap steps.
// - ExtraBuffer: extra slippage buffer on top of the base, used to widen the
//   ask when re-running discovery after an under-quote.
type Params struct {
	Tokens             []types.Token
	Balances           []types.Balance
	TargetChainID      string
	TargetTokenAddress string
	TargetAmount       decimal.Decimal
	SourceAddress      string
	DestinationAddress string
	SwapsAllowed       bool
	ExtraBuffer        decimal.Decimal
}

// Result is the outcome of one discovery cycle.
//
// Fields:
// - Selection: the ranked routes plus the insufficient-balance flag.
// - Generation: the cycle's generation number.
// - Superseded: true when a newer cycle was issued while this one ran, in
//   which case the result was computed but not committed to shared state.
type Result struct {
	Selection  selector.Selection
	Generation uint64
	Superseded bool
}

// Engine batches quote requests through the routing backend and commits only
// the most recently issued cycle's results.
type Engine struct {
	routing types.RoutingService
	calc    *amounts.Calculator
	logger  *logrus.Logger
	config  Config

	// stateMutex guards the generation counter and the committed route list.
	// Exclusivity across cycles is achieved by discarding stale writers via
	// the generation check, not by holding the lock during network calls.
	stateMutex sync.Mutex
	generation uint64
	committed  []types.RouteData
}

// NewEngine creates a discovery engine.
//
// Parameters:
// - routing: the routing backend used for quote fetching.
// - logger: the logger for logging events.
// - config: batching configuration; zero values use the defaults.
//
// Returns:
// - *Engine: a new discovery engine instance.
func NewEngine(routing types.RoutingService, logger *logrus.Logger, config Config) *Engine {
	if config.BulkNumber <= 0 {
		config.BulkNumber = DefaultBulkNumber
	}
	if config.BatchDelay <= 0 {
		config.BatchDelay = DefaultBatchDelay
	}

	return &Engine{
		routing: routing,
		calc:    amounts.NewCalculator(),
		logger:  logger,
		config:  config,
	}
}

// Discover runs one discovery cycle: build candidates, quote them in batches,
// refine under-quotes, and commit the ranked result if the cycle is still the
// latest one. Superseded cycles compute their result but leave shared state
// untouched, so a slow earlier request can never overwrite a newer one.
func (e *Engine) Discover(ctx context.Context, params *Params) (*Result, error) {
	generation := e.nextGeneration()

	target, ok := FindToken(params.Tokens, params.TargetChainID, params.TargetTokenAddress)
	if !ok {
		return nil, errors.Wrapf(funderrors.ErrTokenNotFound, "target %s on chain %s", params.TargetTokenAddress, params.TargetChainID)
	}

	candidates, eligible := e.buildCandidates(params, target)

	e.logger.WithFields(logrus.Fields{
		"generation": generation,
		"candidates": len(candidates),
		"eligible":   eligible,
	}).Debug("Starting funding route discovery cycle")

	routes, err := e.quoteCandidates(ctx, params, candidates)
	if err != nil {
		return nil, err
	}

	sel := selector.Select(routes, eligible > 0)
	committed := e.commit(generation, sel.Routes)
	if !committed {
		e.logger.WithField("generation", generation).Debug("Discarding superseded discovery result")
	}

	return &Result{
		Selection:  sel,
		Generation: generation,
		Superseded: !committed,
	}, nil
}

// CommittedRoutes returns a snapshot of the committed route list from the
// latest completed cycle. Readers must treat it as immutable.
func (e *Engine) CommittedRoutes() []types.RouteData {
	e.stateMutex.Lock()
	defer e.stateMutex.Unlock()

	snapshot := make([]types.RouteData, len(e.committed))
	copy(snapshot, e.committed)
	return snapshot
}

func (e *Engine) nextGeneration() uint64 {
	e.stateMutex.Lock()
	defer e.stateMutex.Unlock()

	e.generation++
	return e.generation
}

func (e *Engine) commit(generation uint64, routes []types.RouteData) bool {
	e.stateMutex.Lock()
	defer e.stateMutex.Unlock()

	if generation != e.generation {
		return false
	}
	e.committed = routes
	return true
}

// quoteCandidates partitions candidates into batches of BulkNumber, quotes a
// batch concurrently, then waits BatchDelay before starting the next batch.
// Results keep candidate order so ranking ties stay deterministic.
func (e *Engine) quoteCandidates(ctx context.Context, params *Params, candidates []types.AmountData) ([]types.RouteData, error) {
	results := make([]*types.RouteData, len(candidates))

	for start := 0; start < len(candidates); start += e.config.BulkNumber {
		end := start + e.config.BulkNumber
		if end > len(candidates) {
			end = len(candidates)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				routeData, err := e.quoteCandidate(ctx, params, candidates[idx])
				if err != nil {
					e.logger.WithFields(logrus.Fields{
						"sourceChain": candidates[idx].SourceToken.ChainID,
						"sourceToken": candidates[idx].SourceToken.Symbol,
					}).WithError(err).Warn("Failed to quote funding candidate")
					return
				}
				results[idx] = routeData
			}(i)
		}
		wg.Wait()

		if end < len(candidates) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.config.BatchDelay):
			}
		}
	}

	routes := make([]types.RouteData, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			routes = append(routes, *r)
		}
	}
	return routes, nil
}

// quoteCandidate fetches a quote-only route for one candidate, refining once
// from the realized exchange rate when the first quote under-delivers.
// Candidates that still under-deliver after refinement are discarded as a
// routing discrepancy rather than returned short.
func (e *Engine) quoteCandidate(ctx context.Context, params *Params, candidate types.AmountData) (*types.RouteData, error) {
	request := &types.QuoteRequest{
		FromChainID:      candidate.SourceToken.ChainID,
		FromTokenAddress: candidate.SourceToken.Address,
		FromAmount:       candidate.SourceAmount,
		ToChainID:        candidate.TargetToken.ChainID,
		ToTokenAddress:   candidate.TargetToken.Address,
		ToAddress:        params.DestinationAddress,
		FromAddress:      params.SourceAddress,
		QuoteOnly:        true,
		Slippage:         amounts.BaseSlippagePercent,
	}

	route, err := e.fetchRoute(ctx, request)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, nil
	}

	required, err := candidate.TargetUnits()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse target amount")
	}

	quoted := route.ToAmountUnits()
	if quoted == nil {
		return nil, errors.Errorf("malformed quote amount %q", route.ToAmount)
	}

	if quoted.Cmp(required) < 0 {
		route, err = e.refineQuote(ctx, request, &candidate, route, required)
		if err != nil || route == nil {
			return nil, err
		}
	}

	if !params.SwapsAllowed && route.HasSwap() {
		e.logger.WithFields(logrus.Fields{
			"sourceChain": candidate.SourceToken.ChainID,
			"quoteId":     route.QuoteID,
		}).Debug("Dropping route with swap step under non-swap filter")
		return nil, nil
	}

	return &types.RouteData{AmountData: candidate, Route: route}, nil
}

// refineQuote recomputes the source amount from the first quote's realized
// exchange rate and re-quotes once. The candidate's amount data is updated in
// place so the returned route stays bound to the amounts it was quoted for.
// A second under-delivery discards the candidate as a routing discrepancy.
func (e *Engine) refineQuote(ctx context.Context, request *types.QuoteRequest, candidate *types.AmountData, firstQuote *types.Route, required *big.Int) (*types.Route, error) {
	rate, err := decimal.NewFromString(firstQuote.ExchangeRate)
	if err != nil || rate.IsZero() {
		e.logger.WithFields(logrus.Fields{
			"quoteId": firstQuote.QuoteID,
			"rate":    firstQuote.ExchangeRate,
		}).Warn("Discarding under-delivering quote without usable exchange rate")
		return nil, nil
	}

	targetAmount, err := decimal.NewFromString(candidate.TargetAmount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse target amount")
	}

	refined, err := e.calc.SourceAmountFromRate(targetAmount, rate, candidate.SourceToken.Decimals)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recompute source amount from quote rate")
	}

	second := *request
	second.FromAmount = refined

	route, err := e.fetchRoute(ctx, &second)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, nil
	}

	quoted := route.ToAmountUnits()
	if quoted == nil || quoted.Cmp(required) < 0 {
		e.logger.WithFields(logrus.Fields{
			"sourceChain": candidate.SourceToken.ChainID,
			"sourceToken": candidate.SourceToken.Symbol,
			"requested":   required.String(),
			"quoted":      route.ToAmount,
		}).Warn("Routing discrepancy: refined quote still under-delivers, dropping candidate")
		return nil, nil
	}

	candidate.SourceAmount = refined
	return route, nil
}

// fetchRoute fetches a quote with bounded retries. Only rate limiting (HTTP
// 429) is retried; every other backend failure is raised on first sight.
func (e *Engine) fetchRoute(ctx context.Context, request *types.QuoteRequest) (*types.Route, error) {
	return retry.Do(ctx, func(ctx context.Context) (*types.Route, error) {
		return e.routing.GetRoute(ctx, request)
	}, retry.Options{
		Interval: quoteRetryInterval,
		Retries:  retry.Retries(quoteRetryAttempts),
		NonRetryable: func(err error) bool {
			return !funderrors.IsRateLimited(err)
		},
	})
}
