package domain

import (
	"encoding/json"
	"time"
)

// TransactionRecord is an audit record of a client-executed transfer.
// The transfer itself settles on chain; this row only mirrors what the
// client asserted. Records are append-only, keyed by chain signature.
type TransactionRecord struct {
	ID             int64           `json:"id"`
	Signature      string          `json:"signature"`
	FromAddress    string          `json:"from_address"`
	ToAddress      string          `json:"to_address"`
	AmountLamports int64           `json:"amount_lamports"`
	Network        string          `json:"network"`
	FiatCurrency   string          `json:"fiat_currency"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Balance is the result of a balance read. Never persisted.
type Balance struct {
	Lamports     uint64  `json:"lamports"`
	SOL          float64 `json:"sol"`
	FiatValue    float64 `json:"fiatValue"`
	FiatCurrency string  `json:"fiatCurrency"`
}

// Network labels for the chain environment a transfer occurred on.
const (
	NetworkDevnet  = "devnet"
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet-beta"
)
