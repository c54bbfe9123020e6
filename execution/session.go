// Package execution drives a selected route through approval, submission and
// settlement as an explicit state machine, translating every failure into a
// terminal state with a typed payload.
package execution

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
	"github.com/ClipFinance/funding-lib/retry"
	"github.com/ClipFinance/funding-lib/walletguard"
)

const (
	// DefaultReceiptInterval is the delay between receipt polls.
	DefaultReceiptInterval = time.Second

	// DefaultReceiptAttempts is the receipt poll budget when none is configured.
	DefaultReceiptAttempts = 60

	// MaxReceiptAttempts caps the configurable receipt poll budget.
	MaxReceiptAttempts = 120

	// DefaultSettlementInterval is the delay between settlement status polls.
	DefaultSettlementInterval = 5 * time.Second

	// DefaultSettlementAttempts bounds the settlement poll to 20 minutes at the
	// default interval.
	DefaultSettlementAttempts = 240

	// allowanceReadRetries bounds transient RPC failures on the allowance read.
	allowanceReadRetries = 5

	transitionBuffer = 8
)

// Config tunes the polling cadence of an execution session. Zero values fall
// back to the defaults above; the receipt budget is capped at MaxReceiptAttempts.
type Config struct {
	ReceiptInterval    time.Duration
	ReceiptAttempts    int
	SettlementInterval time.Duration
	SettlementAttempts int
}

func (c Config) normalized() Config {
	if c.ReceiptInterval <= 0 {
		c.ReceiptInterval = DefaultReceiptInterval
	}
	if c.ReceiptAttempts == 0 {
		c.ReceiptAttempts = DefaultReceiptAttempts
	}
	if c.ReceiptAttempts > MaxReceiptAttempts {
		c.ReceiptAttempts = MaxReceiptAttempts
	}
	if c.SettlementInterval <= 0 {
		c.SettlementInterval = DefaultSettlementInterval
	}
	if c.SettlementAttempts == 0 {
		c.SettlementAttempts = DefaultSettlementAttempts
	}
	return c
}

// Deps are the capabilities an execution session runs against.
//
// Fields:
// - Routing: the routing backend used for submission and settlement tracking.
// - Chain: the source chain, used for allowance reads and receipt lookups.
// - Wallet: the signer submitting approval and execution transactions.
// - Guard: optional network guard ensuring the wallet is on the source chain.
// - Logger: the logger instance for logging.
type Deps struct {
	Routing types.RoutingService
	Chain   types.Chain
	Wallet  types.WalletSigner
	Guard   *walletguard.Guard
	Logger  *logrus.Logger
}

// Transition is one observed state change of a session.
type Transition struct {
	From types.ExecutionState
	To   types.ExecutionState
}

// Outcome is the terminal result of an execution session.
//
// Fields:
// - State: the terminal state reached.
// - ApprovalTxHash: hash of the approval transaction, if one was needed.
// - SourceTxHash: hash of the submitted route transaction.
// - Settlement: the final settlement report for cross-chain routes.
// - Failure: the typed failure payload when State is StateFailed.
type Outcome struct {
	State          types.ExecutionState
	ApprovalTxHash string
	SourceTxHash   string
	Settlement     *types.SettlementResult
	Failure        *Failure
}

// Session executes a single selected route. A session is single-use: Execute
// runs the full lifecycle once and closes the transition stream when done.
type Session struct {
	route  types.RouteData
	deps   Deps
	config Config

	stateMutex  sync.RWMutex
	state       types.ExecutionState
	transitions chan Transition
}

// NewSession creates an execution session for the given route.
//
// Parameters:
// - route: the selected route paired with the amount data it was quoted for.
// - deps: the capabilities the session runs against.
// - config: polling cadence overrides, zero values use defaults.
//
// Returns:
// - *Session: the created session in the idle state.
// - error: non-nil if the route is not executable or a dependency is missing.
func NewSession(route types.RouteData, deps Deps, config Config) (*Session, error) {
	if route.Route == nil {
		return nil, errors.New("route data has no route")
	}
	if route.Route.TransactionRequest == nil {
		return nil, errors.Wrap(funderrors.ErrRouteExpired, "route has no transaction request")
	}
	if deps.Routing == nil {
		return nil, errors.New("routing service not provided")
	}
	if deps.Chain == nil {
		return nil, errors.New("source chain not provided")
	}
	if deps.Wallet == nil {
		return nil, errors.New("wallet signer not provided")
	}
	if deps.Logger == nil {
		return nil, errors.New("logger not provided")
	}

	return &Session{
		route:       route,
		deps:        deps,
		config:      config.normalized(),
		state:       types.StateIdle,
		transitions: make(chan Transition, transitionBuffer),
	}, nil
}

// State returns the session's current state.
func (s *Session) State() types.ExecutionState {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.state
}

// Transitions returns the stream of state changes. The channel is closed when
// Execute returns.
func (s *Session) Transitions() <-chan Transition {
	return s.transitions
}

func (s *Session) setState(to types.ExecutionState) {
	s.stateMutex.Lock()
	from := s.state
	s.state = to
	s.stateMutex.Unlock()

	select {
	case s.transitions <- Transition{From: from, To: to}:
	default:
	}

	s.deps.Logger.WithFields(logrus.Fields{
		"from": string(from),
		"to":   string(to),
	}).Debug("Execution state changed")
}

// Execute runs the full lifecycle: network check, allowance check and approval
// for ERC-20 sources, route submission, receipt confirmation and settlement
// polling for cross-chain routes. Every failure lands in StateFailed with a
// typed payload; the returned error is non-nil only when the context ends the
// session before a terminal state is reached.
func (s *Session) Execute(ctx context.Context) (*Outcome, error) {
	defer close(s.transitions)

	outcome := &Outcome{}
	route := s.route.Route

	if err := s.ensureChain(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		kind := ClassifyWalletError(err)
		if errors.Is(err, funderrors.ErrSwitchRejected) {
			kind = FailureUnrecognizedChain
		}
		return s.fail(outcome, kind, err), nil
	}

	source := s.route.AmountData.SourceToken
	if source.IsNative() {
		s.deps.Logger.WithField("token", source.Symbol).Debug("Native source asset, no allowance needed")
	} else {
		done, err := s.runApprovalPhase(ctx, outcome)
		if err != nil {
			return nil, err
		}
		if done {
			return outcome, nil
		}
	}

	s.setState(types.StateRequestingExecution)

	s.deps.Logger.WithFields(logrus.Fields{
		"quoteId":   route.QuoteID,
		"fromChain": route.FromChainID,
		"toChain":   route.ToChainID,
	}).Info("Submitting route transaction")

	tx, err := s.deps.Routing.SubmitRoute(ctx, s.deps.Wallet, route)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return s.fail(outcome, ClassifyWalletError(err), err), nil
	}
	outcome.SourceTxHash = tx.Hash

	if err := s.waitReceipt(ctx, tx.Hash); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return s.fail(outcome, receiptFailureKind(err), err), nil
	}

	s.setState(types.StatePolling)

	if route.FromChainID == route.ToChainID {
		s.finish(outcome, types.StateSuccess)
		return outcome, nil
	}

	result, err := s.pollSettlement(ctx, tx.Hash)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		kind := FailureBackend
		if errors.Is(err, funderrors.ErrSettlementPending) {
			kind = FailureTimeout
		}
		return s.fail(outcome, kind, err), nil
	}
	if result == nil {
		return s.fail(outcome, FailureTimeout, funderrors.ErrSettlementPending), nil
	}
	outcome.Settlement = result

	switch result.Status {
	case types.SettlementSuccess:
		s.finish(outcome, types.StateSuccess)
	case types.SettlementPartialSuccess:
		s.finish(outcome, types.StatePartialSuccess)
	case types.SettlementNeedsGas:
		s.finish(outcome, types.StateNeedsGas)
	default:
		return s.fail(outcome, FailureBackend,
			errors.Errorf("settlement ended with status %s", result.Status)), nil
	}

	return outcome, nil
}

// runApprovalPhase checks the current allowance against the required source
// amount and requests an approval when it falls short. The returned bool is
// true when the phase already produced a terminal outcome.
func (s *Session) runApprovalPhase(ctx context.Context, outcome *Outcome) (bool, error) {
	s.setState(types.StateCheckingAllowance)

	required, err := s.route.AmountData.RequiredSourceUnits()
	if err != nil {
		s.fail(outcome, FailureBackend, errors.Wrap(err, "failed to parse required source amount"))
		return true, nil
	}

	allowance, err := s.readAllowance(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		s.fail(outcome, FailureBackend, err)
		return true, nil
	}

	if allowance != nil && allowance.Cmp(required) >= 0 {
		s.deps.Logger.WithFields(logrus.Fields{
			"token":     s.route.AmountData.SourceToken.Symbol,
			"allowance": allowance.String(),
			"required":  required.String(),
		}).Debug("Existing allowance is sufficient")
		return false, nil
	}

	s.setState(types.StateRequestingApproval)

	hash, err := s.requestApproval(ctx, required)
	if err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		s.fail(outcome, ClassifyWalletError(err), err)
		return true, nil
	}
	outcome.ApprovalTxHash = hash

	if err := s.waitReceipt(ctx, hash); err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		s.fail(outcome, receiptFailureKind(err), err)
		return true, nil
	}

	s.setState(types.StateApprovalConfirmed)
	return false, nil
}

// ensureChain asks the guard to put the wallet on the route's source chain.
// Sessions without a guard, and wallets without a switchable provider, skip
// the check.
func (s *Session) ensureChain(ctx context.Context) error {
	if s.deps.Guard == nil {
		return nil
	}

	err := s.deps.Guard.EnsureChain(ctx, s.route.Route.FromChainID)
	if errors.Is(err, funderrors.ErrSwitchNotSupported) {
		s.deps.Logger.Debug("Wallet does not support network switching, continuing")
		return nil
	}
	return err
}

func (s *Session) readAllowance(ctx context.Context) (*big.Int, error) {
	owner, err := s.deps.Wallet.GetAddress(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get wallet address")
	}

	token := s.route.AmountData.SourceToken.Address
	spender := s.route.Route.TransactionRequest.TargetAddress

	return retry.Do(ctx, func(ctx context.Context) (*big.Int, error) {
		return s.deps.Chain.GetAllowance(ctx, token, owner, spender)
	}, retry.Options{
		Interval: s.config.ReceiptInterval,
		Retries:  retry.Retries(allowanceReadRetries),
	})
}

func (s *Session) requestApproval(ctx context.Context, amount *big.Int) (string, error) {
	token := s.route.AmountData.SourceToken
	spender := s.route.Route.TransactionRequest.TargetAddress

	data, err := approveCalldata(spender, amount)
	if err != nil {
		return "", err
	}

	s.deps.Logger.WithFields(logrus.Fields{
		"token":   token.Symbol,
		"spender": spender,
		"amount":  amount.String(),
	}).Info("Requesting token approval")

	return s.deps.Wallet.SendTransaction(ctx, &types.TransactionRequest{
		To:    token.Address,
		Data:  data,
		Value: "0",
	})
}

// waitReceipt polls the source chain until the transaction is mined. A mined
// receipt with failed status stops the poll immediately.
func (s *Session) waitReceipt(ctx context.Context, txHash string) error {
	_, err := retry.Do(ctx, func(ctx context.Context) (*types.Receipt, error) {
		receipt, err := s.deps.Chain.TransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if !receipt.Succeeded {
			return nil, errors.Wrapf(funderrors.ErrTransactionFailed, "transaction %s", txHash)
		}
		return receipt, nil
	}, retry.Options{
		Interval: s.config.ReceiptInterval,
		Retries:  retry.Retries(s.config.ReceiptAttempts),
		NonRetryable: func(err error) bool {
			return errors.Is(err, funderrors.ErrTransactionFailed)
		},
	})
	return err
}

// pollSettlement asks the backend for the cross-chain completion state until
// it reports a completed status. Hard request errors stop the poll.
func (s *Session) pollSettlement(ctx context.Context, txHash string) (*types.SettlementResult, error) {
	route := s.route.Route

	return retry.Do(ctx, func(ctx context.Context) (*types.SettlementResult, error) {
		result, err := s.deps.Routing.GetSettlementStatus(ctx, txHash, route.FromChainID, route.ToChainID)
		if err != nil {
			return nil, err
		}
		if !result.Status.Completed() {
			return nil, errors.Wrapf(funderrors.ErrSettlementPending, "status %s", result.Status)
		}
		return result, nil
	}, retry.Options{
		Interval: s.config.SettlementInterval,
		Retries:  retry.Retries(s.config.SettlementAttempts),
		NonRetryable: func(err error) bool {
			return funderrors.IsHTTPStatus(err, 400) || funderrors.IsHTTPStatus(err, 500)
		},
	})
}

func (s *Session) finish(outcome *Outcome, state types.ExecutionState) {
	s.setState(state)
	outcome.State = state
}

func (s *Session) fail(outcome *Outcome, kind FailureKind, err error) *Outcome {
	s.deps.Logger.WithError(err).WithField("kind", string(kind)).Error("Route execution failed")
	s.setState(types.StateFailed)
	outcome.State = types.StateFailed
	outcome.Failure = &Failure{Kind: kind, Err: err}
	return outcome
}

func receiptFailureKind(err error) FailureKind {
	switch {
	case errors.Is(err, funderrors.ErrTransactionFailed):
		return FailureTransactionReverted
	case errors.Is(err, funderrors.ErrReceiptNotFound):
		return FailureTimeout
	default:
		return FailureBackend
	}
}
