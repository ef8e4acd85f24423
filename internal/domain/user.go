package domain

import (
	"encoding/json"
	"time"
)

// UserProfile holds the optional off-chain profile attached to a wallet.
type UserProfile struct {
	ID           int64     `json:"id"`
	GoogleID     string    `json:"google_id,omitempty"`
	Email        string    `json:"email,omitempty"`
	Name         string    `json:"name,omitempty"`
	WalletPubkey string    `json:"wallet_pubkey"`
	CreatedAt    time.Time `json:"created_at"`
}

// KYCSubmission stores an opaque KYC payload keyed by wallet pubkey.
// The service never interprets the payload.
type KYCSubmission struct {
	ID         int64           `json:"id"`
	UserPubkey string          `json:"user_pubkey"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}
