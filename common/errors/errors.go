package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrChainNotFound        = errors.New("chain not found")
	ErrTokenNotFound        = errors.New("token not found")
	ErrInvalidChainID       = errors.New("invalid chain id")
	ErrDatabaseConnect      = errors.New("failed to connect to database")
	ErrInvalidConfig        = errors.New("invalid chain configuration")
	ErrChainExists          = errors.New("chain already exists in registry")
	ErrFactoryNotProvided   = errors.New("chain factory not provided")
	ErrInvalidChainType     = errors.New("invalid chain type")
	ErrNotImplemented       = errors.New("functionality not implemented")
	ErrRouteExpired         = errors.New("route no longer valid for its amount data")
	ErrInsufficientBalance  = errors.New("insufficient balance for requested amount")
	ErrSwitchRejected       = errors.New("network switch rejected by wallet")
	ErrSwitchNotSupported   = errors.New("wallet provider does not support network switch")
	ErrReceiptNotFound      = errors.New("transaction receipt not found yet")
	ErrTransactionFailed    = errors.New("transaction reverted on chain")
	ErrSettlementPending    = errors.New("cross-chain settlement not completed yet")
	ErrProviderChanged      = errors.New("underlying network changed")
	ErrQuoteUnderDelivery   = errors.New("quoted amount below requested target amount")
	ErrExecutionUnsupported = errors.New("route source chain does not support execution")
)

// HTTPError carries the status code of a failed backend call so retry
// policies can tell transient rate limiting apart from hard request errors.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// IsHTTPStatus reports whether err wraps an HTTPError with the given status code.
func IsHTTPStatus(err error, code int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == code
}

// IsRateLimited reports whether err is an HTTP 429 response from the backend.
func IsRateLimited(err error) bool {
	return IsHTTPStatus(err, 429)
}

// IsProviderChanged reports whether err is the benign signal emitted by wallet
// providers when the active network changes under an in-flight call.
func IsProviderChanged(err error) bool {
	return errors.Is(err, ErrProviderChanged)
}
