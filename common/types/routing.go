package types

import "context"

// QuoteRequest describes one route quote request against the routing backend.
type QuoteRequest struct {
	FromChainID      string `json:"fromChainId"`
	FromTokenAddress string `json:"fromToken"`
	FromAmount       string `json:"fromAmount"`
	ToChainID        string `json:"toChainId"`
	ToTokenAddress   string `json:"toToken"`
	ToAddress        string `json:"toAddress"`
	FromAddress      string `json:"fromAddress"`
	// QuoteOnly requests an estimation-only route without a bound
	// transaction request payload.
	QuoteOnly bool `json:"quoteOnly"`
	// Slippage is the tolerance forwarded to the backend, in percent.
	Slippage float64 `json:"slippage"`
}

// RoutingService is the cross-chain routing aggregator capability.
// The backend's own route-finding algorithm is opaque to this library.
type RoutingService interface {
	// GetRoute fetches a route quote for the given request.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - req: the quote request parameters.
	//
	// Returns:
	// - *Route: the quoted route.
	// - error: an error if the backend rejects or fails the request.
	GetRoute(ctx context.Context, req *QuoteRequest) (*Route, error)

	// SubmitRoute signs and submits the route's transaction request through
	// the given wallet signer on the source chain.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - signer: the wallet signer submitting the transaction.
	// - route: the route to execute.
	//
	// Returns:
	// - *Transaction: the submitted source-chain transaction.
	// - error: an error if signing or submission fails.
	SubmitRoute(ctx context.Context, signer WalletSigner, route *Route) (*Transaction, error)

	// GetSettlementStatus reports the cross-chain completion state for a
	// submitted source transaction hash.
	GetSettlementStatus(ctx context.Context, txHash string, fromChainID string, toChainID string) (*SettlementResult, error)
}

// WalletSigner is the connected wallet capability used to sign and submit
// transactions. Wallet-connection negotiation is outside this library; a
// signer is assumed to be already connected.
type WalletSigner interface {
	// GetAddress returns the wallet's active account address.
	GetAddress(ctx context.Context) (string, error)

	// SendTransaction asks the wallet to sign and broadcast the given payload
	// and returns the transaction hash. There is no timeout here: the user
	// may need unbounded time to act in their wallet.
	SendTransaction(ctx context.Context, req *TransactionRequest) (string, error)
}

// WalletProvider is the EIP-1193 style JSON-RPC surface of the wallet, used
// for chain-id queries and network switching.
type WalletProvider interface {
	// Request performs a JSON-RPC request against the wallet provider.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - method: the JSON-RPC method name, e.g. eth_chainId.
	// - params: the positional JSON-RPC parameters.
	//
	// Returns:
	// - interface{}: the decoded JSON-RPC result.
	// - error: an error if the provider rejects the request.
	Request(ctx context.Context, method string, params ...interface{}) (interface{}, error)
}
