package types

// SettlementStatus is the routing backend's report of cross-chain completion
// state for a submitted source transaction.
type SettlementStatus string

const (
	// SettlementSuccess indicates all route legs settled and the full target amount arrived.
	SettlementSuccess SettlementStatus = "success"

	// SettlementPartialSuccess indicates some but not all legs settled.
	SettlementPartialSuccess SettlementStatus = "partial_success"

	// SettlementNeedsGas indicates funds arrived but a follow-up gas top-up is
	// required on the destination chain.
	SettlementNeedsGas SettlementStatus = "needs_gas"

	// SettlementNotFound indicates the backend gave up tracking the transaction.
	SettlementNotFound SettlementStatus = "not_found"

	// SettlementOngoing indicates the transfer is still in flight.
	SettlementOngoing SettlementStatus = "ongoing"
)

// Completed reports whether the status is part of the fixed completed set.
// Any other status keeps the settlement poll running.
func (s SettlementStatus) Completed() bool {
	switch s {
	case SettlementSuccess, SettlementPartialSuccess, SettlementNeedsGas, SettlementNotFound:
		return true
	default:
		return false
	}
}

// SettlementResult is one response from the backend's status endpoint.
type SettlementResult struct {
	Status    SettlementStatus `json:"status"`
	SubStatus string           `json:"subStatus"`
	FromChain string           `json:"fromChain"`
	ToChain   string           `json:"toChain"`
	ToTxHash  string           `json:"toTxHash"`
}

// ExecutionState is one step of the route execution lifecycle.
type ExecutionState string

const (
	StateIdle                ExecutionState = "idle"
	StateCheckingAllowance   ExecutionState = "checking_allowance"
	StateRequestingApproval  ExecutionState = "requesting_approval"
	StateApprovalConfirmed   ExecutionState = "approval_confirmed"
	StateRequestingExecution ExecutionState = "requesting_execution"
	StatePolling             ExecutionState = "polling"
	StateSuccess             ExecutionState = "success"
	StatePartialSuccess      ExecutionState = "partial_success"
	StateNeedsGas            ExecutionState = "needs_gas"
	StateFailed              ExecutionState = "failed"
)

// Terminal reports whether the state ends the execution session.
func (s ExecutionState) Terminal() bool {
	switch s {
	case StateSuccess, StatePartialSuccess, StateNeedsGas, StateFailed:
		return true
	default:
		return false
	}
}
