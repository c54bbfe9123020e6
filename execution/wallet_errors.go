package execution

import (
	"fmt"
	"strings"
)

// FailureKind is the closed taxonomy a failed execution is translated into.
// The kind selects which terminal guidance the presentation layer shows; it
// never changes retry behavior, since all wallet errors are hard stops.
type FailureKind string

const (
	// FailurePopupBlocked indicates the wallet's confirmation window was blocked.
	FailurePopupBlocked FailureKind = "popup_blocked"
	// FailureUserRejected indicates the user declined the request in their wallet.
	FailureUserRejected FailureKind = "user_rejected"
	// FailureGasLimitRejected indicates the wallet refused the transaction's gas limit.
	FailureGasLimitRejected FailureKind = "gas_limit_rejected"
	// FailureUnrecognizedChain indicates the wallet does not know the requested chain.
	FailureUnrecognizedChain FailureKind = "unrecognized_chain"
	// FailureWallet is any other wallet interaction failure.
	FailureWallet FailureKind = "wallet_error"
	// FailureTransactionReverted indicates a mined transaction with failed status.
	FailureTransactionReverted FailureKind = "transaction_reverted"
	// FailureBackend indicates a hard routing backend error.
	FailureBackend FailureKind = "backend_error"
	// FailureTimeout indicates receipt or settlement polling exhausted its attempts.
	FailureTimeout FailureKind = "timeout"
)

// Failure is the typed error payload attached to a Failed terminal state.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("execution failed: %s", f.Kind)
	}
	return fmt.Sprintf("execution failed (%s): %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ClassifyWalletError maps a wallet interaction error onto the failure
// taxonomy by matching its message against known substrings.
func ClassifyWalletError(err error) FailureKind {
	if err == nil {
		return FailureWallet
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "pop-up") || strings.Contains(msg, "popup"):
		return FailurePopupBlocked
	case strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "rejected by user"):
		return FailureUserRejected
	case strings.Contains(msg, "gas limit") || strings.Contains(msg, "insufficient gas"):
		return FailureGasLimitRejected
	case strings.Contains(msg, "unrecognized chain") ||
		strings.Contains(msg, "unsupported chain") ||
		strings.Contains(msg, "network switch rejected"):
		return FailureUnrecognizedChain
	default:
		return FailureWallet
	}
}
