package storage

import (
	"context"
	"encoding/json"

	"solapay/internal/domain"
)

// TransactionStore provides access to transaction records.
type TransactionStore interface {
	// Insert adds a transaction record unless one with the same signature
	// already exists. A duplicate signature is a no-op, not an error;
	// inserted reports whether a row was written.
	Insert(ctx context.Context, t *domain.TransactionRecord) (inserted bool, err error)

	// ListByAddress retrieves records where address appears as sender or
	// recipient, newest first, capped at limit.
	ListByAddress(ctx context.Context, address string, limit int) ([]*domain.TransactionRecord, error)

	// ListRecent retrieves the most recent records across all accounts,
	// newest first, capped at limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.TransactionRecord, error)
}

// UserStore provides access to user profiles.
type UserStore interface {
	// Upsert inserts or updates a profile keyed by wallet pubkey.
	Upsert(ctx context.Context, u *domain.UserProfile) error

	// GetByWallet retrieves a profile by wallet pubkey. Returns ErrNotFound
	// if not exists.
	GetByWallet(ctx context.Context, pubkey string) (*domain.UserProfile, error)
}

// KYCStore provides access to KYC submissions.
type KYCStore interface {
	// Insert stores an opaque KYC payload for a pubkey.
	Insert(ctx context.Context, pubkey string, data json.RawMessage) error

	// ListByPubkey retrieves submissions for a pubkey, newest first.
	ListByPubkey(ctx context.Context, pubkey string) ([]*domain.KYCSubmission, error)
}
