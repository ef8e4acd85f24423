package stub

import (
	"context"

	"solapay/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Balances     map[string]uint64
	Statuses     map[string]*solana.SignatureStatus
	Transactions map[string]*solana.Transaction

	// Err, when set, is returned by every call.
	Err error

	// Call counters, one per method.
	BalanceCalls     int
	StatusCalls      int
	TransactionCalls int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:     make(map[string]uint64),
		Statuses:     make(map[string]*solana.SignatureStatus),
		Transactions: make(map[string]*solana.Transaction),
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)

// GetBalance retrieves a balance from the stub store.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.BalanceCalls++
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Balances[pubkey], nil
}

// GetSignatureStatus retrieves a signature status from the stub store.
// Unknown signatures return nil, matching the RPC node behavior.
func (c *RPCClient) GetSignatureStatus(_ context.Context, signature string) (*solana.SignatureStatus, error) {
	c.StatusCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Statuses[signature], nil
}

// GetTransaction retrieves a transaction from the stub store. Unknown
// signatures return nil, matching the RPC node behavior.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.TransactionCalls++
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Transactions[signature], nil
}

// SetBalance sets the balance for a pubkey.
func (c *RPCClient) SetBalance(pubkey string, lamports uint64) {
	c.Balances[pubkey] = lamports
}

// SetStatus sets the signature status for a signature.
func (c *RPCClient) SetStatus(signature string, status *solana.SignatureStatus) {
	c.Statuses[signature] = status
}

// SetTransaction sets the ledger history entry for a signature.
func (c *RPCClient) SetTransaction(signature string, tx *solana.Transaction) {
	c.Transactions[signature] = tx
}
