package discovery

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ClipFinance/funding-lib/amounts"
	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRouting struct {
	mu      sync.Mutex
	calls   []types.QuoteRequest
	handler func(req *types.QuoteRequest) (*types.Route, error)
}

func (f *fakeRouting) GetRoute(ctx context.Context, req *types.QuoteRequest) (*types.Route, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *req)
	f.mu.Unlock()
	return f.handler(req)
}

func (f *fakeRouting) SubmitRoute(ctx context.Context, signer types.WalletSigner, route *types.Route) (*types.Transaction, error) {
	return nil, errors.New("not supported in discovery tests")
}

func (f *fakeRouting) GetSettlementStatus(ctx context.Context, txHash, fromChainID, toChainID string) (*types.SettlementResult, error) {
	return nil, errors.New("not supported in discovery tests")
}

func (f *fakeRouting) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRouting) callsCopy() []types.QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.QuoteRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

var (
	usdcTarget = types.Token{
		ChainID:  "10",
		Address:  "0x7F5c764cBc14f9669B88837ca1490cCa17c31607",
		Symbol:   "USDC",
		Decimals: 6,
		USDPrice: decimal.NewFromInt(1),
	}
	ethSource = types.Token{
		ChainID:  "1",
		Address:  types.ZeroAddress,
		Symbol:   "ETH",
		Decimals: 18,
		USDPrice: decimal.NewFromInt(2000),
	}
	usdcSource = types.Token{
		ChainID:  "137",
		Address:  "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		Symbol:   "USDC",
		Decimals: 6,
		USDPrice: decimal.NewFromInt(1),
	}
)

func eth(amount string) *big.Int {
	d := decimal.RequireFromString(amount)
	return d.Shift(18).BigInt()
}

func usdc(amount string) *big.Int {
	d := decimal.RequireFromString(amount)
	return d.Shift(6).BigInt()
}

func baseParams(balances []types.Balance) *Params {
	return &Params{
		Tokens:             []types.Token{usdcTarget, ethSource, usdcSource},
		Balances:           balances,
		TargetChainID:      usdcTarget.ChainID,
		TargetTokenAddress: usdcTarget.Address,
		TargetAmount:       decimal.NewFromInt(100),
		SourceAddress:      "0x1111111111111111111111111111111111111111",
		DestinationAddress: "0x2222222222222222222222222222222222222222",
		SwapsAllowed:       true,
	}
}

func goodQuote(req *types.QuoteRequest, quoteID string, duration int) *types.Route {
	return &types.Route{
		QuoteID:           quoteID,
		FromChainID:       req.FromChainID,
		FromTokenAddress:  req.FromTokenAddress,
		FromAmount:        req.FromAmount,
		ToChainID:         req.ToChainID,
		ToTokenAddress:    req.ToTokenAddress,
		ToAmount:          "102000000", // 102 USDC, above the requested 100
		ExchangeRate:      "2000",
		ExecutionDuration: duration,
		Actions:           []types.RouteAction{{Type: types.ActionBridge}},
	}
}

func newTestEngine(routing types.RoutingService) *Engine {
	return NewEngine(routing, testLogger(), Config{BatchDelay: time.Millisecond})
}

func TestDiscoverRankedCandidates(t *testing.T) {
	// Two funded balances on two chains, both sufficient for 100 USDC.
	routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
		if req.FromChainID == "1" {
			return goodQuote(req, "eth-route", 300), nil
		}
		return goodQuote(req, "usdc-route", 60), nil
	}}
	engine := newTestEngine(routing)

	result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
		{Token: ethSource, Amount: eth("50")},
		{Token: usdcSource, Amount: usdc("200")},
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, routing.callCount())
	require.Len(t, result.Selection.Routes, 2)
	assert.Equal(t, "usdc-route", result.Selection.Routes[0].Route.QuoteID, "fastest route first")
	assert.Equal(t, "eth-route", result.Selection.Routes[1].Route.QuoteID)
	assert.False(t, result.Selection.InsufficientBalance)
	assert.False(t, result.Superseded)
	assert.Len(t, engine.CommittedRoutes(), 2)
}

func TestDiscoverInsufficientBalances(t *testing.T) {
	routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
		return nil, errors.New("no quote should be fetched for insufficient balances")
	}}
	engine := newTestEngine(routing)

	// Both balances are below the required source amounts.
	result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
		{Token: ethSource, Amount: eth("0.01")},  // needs 0.051 ETH
		{Token: usdcSource, Amount: usdc("60")},  // needs 102 USDC
	}))
	require.NoError(t, err)

	assert.Empty(t, result.Selection.Routes)
	assert.True(t, result.Selection.InsufficientBalance)
	assert.Equal(t, 0, routing.callCount())
}

func TestDiscoverNoBalancesAtAll(t *testing.T) {
	routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
		return nil, errors.New("unreachable")
	}}
	engine := newTestEngine(routing)

	result, err := engine.Discover(context.Background(), baseParams(nil))
	require.NoError(t, err)

	assert.Empty(t, result.Selection.Routes)
	assert.False(t, result.Selection.InsufficientBalance, "no balances is distinct from insufficient")
}

func TestDiscoverExcludesSelfAndSameChain(t *testing.T) {
	targetBalance := types.Balance{Token: usdcTarget, Amount: usdc("1000")}
	sameChainToken := types.Token{
		ChainID:  usdcTarget.ChainID,
		Address:  types.ZeroAddress,
		Symbol:   "ETH",
		Decimals: 18,
		USDPrice: decimal.NewFromInt(2000),
	}

	t.Run("target asset never funds itself", func(t *testing.T) {
		routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
			return nil, errors.New("unreachable")
		}}
		engine := newTestEngine(routing)

		result, err := engine.Discover(context.Background(), baseParams([]types.Balance{targetBalance}))
		require.NoError(t, err)
		assert.Equal(t, 0, routing.callCount())
		assert.False(t, result.Selection.InsufficientBalance)
	})

	t.Run("same-chain balance excluded when swaps disallowed", func(t *testing.T) {
		routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
			return nil, errors.New("unreachable")
		}}
		engine := newTestEngine(routing)

		params := baseParams([]types.Balance{
			{Token: sameChainToken, Amount: eth("10")},
		})
		params.Tokens = append(params.Tokens, sameChainToken)
		params.SwapsAllowed = false

		result, err := engine.Discover(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, 0, routing.callCount())
		assert.False(t, result.Selection.InsufficientBalance)
	})
}

func TestDiscoverSwapStepFilter(t *testing.T) {
	routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
		route := goodQuote(req, "swapful", 60)
		route.Actions = append(route.Actions, types.RouteAction{Type: types.ActionSwap})
		return route, nil
	}}
	engine := newTestEngine(routing)

	params := baseParams([]types.Balance{{Token: ethSource, Amount: eth("50")}})
	params.SwapsAllowed = false

	result, err := engine.Discover(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, routing.callCount())
	assert.Empty(t, result.Selection.Routes)
	assert.True(t, result.Selection.InsufficientBalance)
}

func TestDiscoverTwoPassRefinement(t *testing.T) {
	t.Run("refined quote replaces the under-quote", func(t *testing.T) {
		routing := &fakeRouting{}
		routing.handler = func(req *types.QuoteRequest) (*types.Route, error) {
			if routing.callCount() == 1 {
				route := goodQuote(req, "first", 300)
				route.ToAmount = "99000000" // under-delivers
				route.ExchangeRate = "1960"
				return route, nil
			}
			return goodQuote(req, "second", 300), nil
		}
		engine := newTestEngine(routing)

		result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
			{Token: ethSource, Amount: eth("50")},
		}))
		require.NoError(t, err)

		calls := routing.callsCopy()
		require.Len(t, calls, 2)
		// Second ask derives from the realized rate: 100/1960 * 1.02.
		refined, err := amounts.NewCalculator().SourceAmountFromRate(
			decimal.NewFromInt(100), decimal.NewFromInt(1960), 18)
		require.NoError(t, err)
		assert.Equal(t, refined, calls[1].FromAmount)

		require.Len(t, result.Selection.Routes, 1)
		got := result.Selection.Routes[0]
		assert.Equal(t, "second", got.Route.QuoteID)
		assert.Equal(t, calls[1].FromAmount, got.AmountData.SourceAmount,
			"amount data must match what the kept quote was fetched for")
	})

	t.Run("persistent under-delivery discards the candidate", func(t *testing.T) {
		routing := &fakeRouting{}
		routing.handler = func(req *types.QuoteRequest) (*types.Route, error) {
			route := goodQuote(req, "short", 300)
			route.ToAmount = "99000000"
			route.ExchangeRate = "1960"
			return route, nil
		}
		engine := newTestEngine(routing)

		result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
			{Token: ethSource, Amount: eth("50")},
		}))
		require.NoError(t, err)

		assert.Equal(t, 2, routing.callCount(), "exactly one refinement attempt")
		assert.Empty(t, result.Selection.Routes)
		assert.True(t, result.Selection.InsufficientBalance)
	})
}

func TestDiscoverRetryPolicy(t *testing.T) {
	t.Run("rate limiting is retried", func(t *testing.T) {
		routing := &fakeRouting{}
		routing.handler = func(req *types.QuoteRequest) (*types.Route, error) {
			if routing.callCount() == 1 {
				return nil, &funderrors.HTTPError{StatusCode: 429}
			}
			return goodQuote(req, "after-429", 60), nil
		}
		engine := newTestEngine(routing)

		result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
			{Token: ethSource, Amount: eth("50")},
		}))
		require.NoError(t, err)

		assert.Equal(t, 2, routing.callCount())
		require.Len(t, result.Selection.Routes, 1)
		assert.Equal(t, "after-429", result.Selection.Routes[0].Route.QuoteID)
	})

	t.Run("hard backend errors drop the candidate on first sight", func(t *testing.T) {
		routing := &fakeRouting{handler: func(req *types.QuoteRequest) (*types.Route, error) {
			return nil, &funderrors.HTTPError{StatusCode: 400, Message: "unsupported pair"}
		}}
		engine := newTestEngine(routing)

		result, err := engine.Discover(context.Background(), baseParams([]types.Balance{
			{Token: ethSource, Amount: eth("50")},
		}))
		require.NoError(t, err)

		assert.Equal(t, 1, routing.callCount())
		assert.Empty(t, result.Selection.Routes)
	})
}

func TestDiscoverStalenessSuppression(t *testing.T) {
	// Cycle A is issued first but resolves after cycle B. Only B's result may
	// reach shared route state, regardless of completion order.
	releaseA := make(chan struct{})
	routing := &fakeRouting{}
	routing.handler = func(req *types.QuoteRequest) (*types.Route, error) {
		if req.FromChainID == ethSource.ChainID {
			<-releaseA
			return goodQuote(req, "stale-route", 60), nil
		}
		return goodQuote(req, "fresh-route", 300), nil
	}
	engine := newTestEngine(routing)

	paramsA := baseParams([]types.Balance{{Token: ethSource, Amount: eth("50")}})
	paramsB := baseParams([]types.Balance{{Token: usdcSource, Amount: usdc("200")}})

	type cycleOutcome struct {
		result *Result
		err    error
	}
	resultCh := make(chan cycleOutcome, 1)
	go func() {
		result, err := engine.Discover(context.Background(), paramsA)
		resultCh <- cycleOutcome{result, err}
	}()

	// Wait until cycle A is in flight before issuing cycle B.
	require.Eventually(t, func() bool { return routing.callCount() == 1 }, time.Second, time.Millisecond)

	resultB, err := engine.Discover(context.Background(), paramsB)
	require.NoError(t, err)
	assert.False(t, resultB.Superseded)

	close(releaseA)
	outcomeA := <-resultCh
	require.NoError(t, outcomeA.err)
	assert.True(t, outcomeA.result.Superseded, "slow earlier cycle must not commit")

	committed := engine.CommittedRoutes()
	require.Len(t, committed, 1)
	assert.Equal(t, "fresh-route", committed[0].Route.QuoteID)
}

func TestDiscoverBatching(t *testing.T) {
	// Seven candidates with bulk size five: the sixth request must not be
	// issued before the whole first batch finished.
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	routing := &fakeRouting{}
	routing.handler = func(req *types.QuoteRequest) (*types.Route, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return goodQuote(req, req.FromChainID, 60), nil
	}
	engine := newTestEngine(routing)

	tokens := []types.Token{usdcTarget}
	balances := make([]types.Balance, 0, 7)
	for i := 0; i < 7; i++ {
		token := types.Token{
			ChainID:  string(rune('a' + i)),
			Address:  types.ZeroAddress,
			Symbol:   "ETH",
			Decimals: 18,
			USDPrice: decimal.NewFromInt(2000),
		}
		tokens = append(tokens, token)
		balances = append(balances, types.Balance{Token: token, Amount: eth("50")})
	}

	params := baseParams(balances)
	params.Tokens = tokens

	result, err := engine.Discover(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 7, routing.callCount())
	assert.Len(t, result.Selection.Routes, 7)
	assert.LessOrEqual(t, maxInFlight, DefaultBulkNumber)
}
