package types

// ChainType represents supported blockchain families.
type ChainType string

const (
	// EVM represents Ethereum Virtual Machine based chains (Ethereum, Base, Arbitrum, etc.).
	// EVM chains support balance reads, allowance checks and transaction submission.
	EVM ChainType = "EVM"
	// SOLANA represents the Solana chain. Solana chains act as balance
	// sources only; routes drawing on them are quote-only.
	SOLANA ChainType = "SOLANA"
	// UNKNOWN represents an unsupported chain type.
	UNKNOWN ChainType = "UNKNOWN"
)

// String converts ChainType to its string representation.
func (t ChainType) String() string {
	return string(t)
}

// ParseChainType converts a string to a ChainType.
func ParseChainType(s string) ChainType {
	switch s {
	case EVM.String():
		return EVM
	case SOLANA.String():
		return SOLANA
	default:
		return UNKNOWN
	}
}
