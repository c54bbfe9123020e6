// Package routing implements the HTTP client for the external routing
// aggregator backend. The backend owns route finding; this client only quotes,
// submits and tracks routes on its behalf.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	funderrors "github.com/ClipFinance/funding-lib/common/errors"
	"github.com/ClipFinance/funding-lib/common/types"
)

const (
	defaultTimeout = 30 * time.Second

	quotePath  = "/routes/quote"
	statusPath = "/routes/status"

	// maxErrorBodyBytes bounds how much of an error response body is kept for
	// the error message.
	maxErrorBodyBytes = 512
)

// Config holds the routing backend connection settings.
//
// Fields:
// - BaseURL: the backend's base URL, without a trailing slash.
// - APIKey: optional API key sent with every request.
// - Timeout: per-request timeout, defaults to 30 seconds.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the routing aggregator over HTTP. It implements
// types.RoutingService.
type Client struct {
	config Config
	http   *http.Client
	logger *logrus.Logger
}

var _ types.RoutingService = (*Client)(nil)

// NewClient creates a routing backend client.
//
// Parameters:
// - config: the backend connection settings.
// - logger: the logger instance for logging.
//
// Returns:
// - *Client: the created client.
// - error: non-nil if the configuration is incomplete.
func NewClient(config Config, logger *logrus.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("routing backend base URL not provided")
	}
	if logger == nil {
		return nil, errors.New("logger not provided")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

// GetRoute fetches a route quote for the given request.
//
// Parameters:
// - ctx: the context for managing the request.
// - req: the quote request parameters.
//
// Returns:
// - *types.Route: the quoted route.
// - error: an HTTPError for non-2xx responses, so callers can tell rate
//   limiting apart from hard request errors.
func (c *Client) GetRoute(ctx context.Context, req *types.QuoteRequest) (*types.Route, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal quote request")
	}

	c.logger.WithFields(logrus.Fields{
		"fromChain": req.FromChainID,
		"toChain":   req.ToChainID,
		"quoteOnly": req.QuoteOnly,
	}).Debug("Requesting route quote")

	var route types.Route
	if err := c.do(ctx, http.MethodPost, quotePath, nil, bytes.NewReader(body), &route); err != nil {
		return nil, err
	}

	return &route, nil
}

// SubmitRoute signs and submits the route's transaction request through the
// given wallet signer.
//
// Parameters:
// - ctx: the context for managing the request.
// - signer: the wallet signer submitting the transaction.
// - route: the route to execute.
//
// Returns:
// - *types.Transaction: the submitted source-chain transaction.
// - error: an error if the route is not executable or the wallet declines.
func (c *Client) SubmitRoute(ctx context.Context, signer types.WalletSigner, route *types.Route) (*types.Transaction, error) {
	if route == nil || route.TransactionRequest == nil {
		return nil, errors.Wrap(funderrors.ErrRouteExpired, "route has no transaction request")
	}

	from, err := signer.GetAddress(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signer address")
	}

	hash, err := signer.SendTransaction(ctx, route.TransactionRequest)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"txHash":  hash,
		"quoteId": route.QuoteID,
		"chainId": route.FromChainID,
	}).Info("Route transaction submitted")

	return &types.Transaction{
		Hash:    hash,
		From:    from,
		To:      route.TransactionRequest.To,
		ChainID: route.FromChainID,
		QuoteID: route.QuoteID,
	}, nil
}

// GetSettlementStatus reports the cross-chain completion state for a submitted
// source transaction hash.
func (c *Client) GetSettlementStatus(ctx context.Context, txHash string, fromChainID string, toChainID string) (*types.SettlementResult, error) {
	query := url.Values{}
	query.Set("txHash", txHash)
	query.Set("fromChain", fromChainID)
	query.Set("toChain", toChainID)

	var result types.SettlementResult
	if err := c.do(ctx, http.MethodGet, statusPath, query, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// do performs one backend request and decodes a JSON response into out.
// Non-2xx responses become HTTPError values carrying the status code.
func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body io.Reader, out interface{}) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "failed to create backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIKey != "" {
		req.Header.Set("x-api-key", c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "backend request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &funderrors.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(message),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to decode %s response", path))
	}

	return nil
}
