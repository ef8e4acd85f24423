package solana

import "context"

// LamportsPerSOL is the fixed conversion factor between the chain's
// smallest unit and its display unit.
const LamportsPerSOL = 1_000_000_000

// RPCClient defines the Solana RPC HTTP interface used by the service.
type RPCClient interface {
	// GetBalance retrieves the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetSignatureStatus retrieves the confirmation status of a signature.
	// Returns nil if the signature is unknown to the node.
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)

	// GetTransaction retrieves a transaction by signature.
	// Returns nil if the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
}

// SignatureStatus describes the on-chain confirmation state of a signature.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int64
	ConfirmationStatus string
	Err                interface{}
}

// Confirmed reports whether the signature reached at least "confirmed".
func (s *SignatureStatus) Confirmed() bool {
	if s == nil {
		return false
	}
	return s.ConfirmationStatus == "confirmed" || s.ConfirmationStatus == "finalized"
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Err       interface{}
}

// LamportsToSOL converts lamports to the SOL display unit.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// SOLToLamports converts a SOL display amount to lamports, truncating
// sub-lamport precision.
func SOLToLamports(sol float64) int64 {
	return int64(sol * LamportsPerSOL)
}
