package types

import "math/big"

// ActionType classifies a single step inside an aggregator route.
type ActionType string

const (
	// ActionSwap is a same-chain token conversion step.
	ActionSwap ActionType = "swap"
	// ActionBridge is a cross-chain transfer step.
	ActionBridge ActionType = "bridge"
)

// RouteAction is one step of an aggregator route plan.
type RouteAction struct {
	Type        ActionType `json:"type"`
	Provider    string     `json:"provider"`
	FromChainID string     `json:"fromChainId"`
	ToChainID   string     `json:"toChainId"`
	Description string     `json:"description"`
}

// TransactionRequest is the payload the wallet has to sign and submit to
// start executing a route on the source chain.
type TransactionRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasLimit string `json:"gasLimit"`
	// TargetAddress is the contract that spends the source token and
	// therefore the spender an ERC-20 approval has to be granted to.
	TargetAddress string `json:"targetAddress"`
}

// Route is an aggregator quote: a plan to move and convert funds from a
// source token/chain to a destination token/chain. A route is only valid for
// the amounts and chains it was quoted for; once the underlying AmountData
// changes it must be treated as expired.
type Route struct {
	QuoteID           string              `json:"quoteId"`
	FromChainID       string              `json:"fromChainId"`
	FromTokenAddress  string              `json:"fromToken"`
	FromAmount        string              `json:"fromAmount"`
	ToChainID         string              `json:"toChainId"`
	ToTokenAddress    string              `json:"toToken"`
	ToAmount          string              `json:"toAmount"`
	ToAmountMin       string              `json:"toAmountMin"`
	ExchangeRate      string              `json:"exchangeRate"`
	ExecutionDuration int                 `json:"executionDuration"`
	FeeCostsUSD       string              `json:"feeCostsUsd"`
	GasCostsUSD       string              `json:"gasCostsUsd"`
	Actions           []RouteAction       `json:"actions"`
	TransactionRequest *TransactionRequest `json:"transactionRequest,omitempty"`
}

// HasSwap reports whether the route plan contains a same-chain swap step.
func (r *Route) HasSwap() bool {
	for _, action := range r.Actions {
		if action.Type == ActionSwap {
			return true
		}
	}
	return false
}

// ToAmountUnits returns the quoted delivered amount in the destination
// token's smallest units, or nil if the quote is malformed.
func (r *Route) ToAmountUnits() *big.Int {
	units, ok := new(big.Int).SetString(r.ToAmount, 10)
	if !ok {
		return nil
	}
	return units
}

// RouteData pairs a quote with the amount data it was quoted for.
// It is the unit ranked and selected between discovery and execution.
type RouteData struct {
	AmountData AmountData
	Route      *Route
}
