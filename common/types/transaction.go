package types

// Transaction represents a submitted on-chain transaction.
//
// Fields:
// - Hash: the hash of the transaction.
// - From: the address the transaction was sent from.
// - To: the address the transaction was sent to.
// - ChainID: the identifier of the chain the transaction was submitted on.
// - Nonce: the nonce of the transaction.
// - QuoteID: the identifier of the route quote that produced the transaction, if any.
type Transaction struct {
	Hash    string
	From    string
	To      string
	ChainID string
	Nonce   uint64
	QuoteID string
}

// Receipt is the mined outcome of a transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	// Succeeded is false when the transaction was mined but reverted.
	// A reverted receipt is a hard stop, distinct from "not found yet".
	Succeeded bool
}
