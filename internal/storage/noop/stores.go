// Package noop provides discard stores for demo mode. With no database
// configured, writes are accepted and dropped and reads return empty,
// so balance reads keep working while nothing persists. This degradation
// is only wired in when the operator sets DEMO_MODE explicitly.
package noop

import (
	"context"
	"encoding/json"

	"solapay/internal/domain"
	"solapay/internal/storage"
)

// TransactionStore discards writes and returns no records.
type TransactionStore struct{}

// NewTransactionStore creates a discard transaction store.
func NewTransactionStore() *TransactionStore { return &TransactionStore{} }

var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert accepts and drops the record.
func (*TransactionStore) Insert(_ context.Context, t *domain.TransactionRecord) (bool, error) {
	if t == nil || t.Signature == "" {
		return false, storage.ErrInvalidInput
	}
	return false, nil
}

// ListByAddress returns no records.
func (*TransactionStore) ListByAddress(context.Context, string, int) ([]*domain.TransactionRecord, error) {
	return []*domain.TransactionRecord{}, nil
}

// ListRecent returns no records.
func (*TransactionStore) ListRecent(context.Context, int) ([]*domain.TransactionRecord, error) {
	return []*domain.TransactionRecord{}, nil
}

// UserStore discards writes and reports every profile missing.
type UserStore struct{}

// NewUserStore creates a discard user store.
func NewUserStore() *UserStore { return &UserStore{} }

var _ storage.UserStore = (*UserStore)(nil)

// Upsert accepts and drops the profile.
func (*UserStore) Upsert(_ context.Context, u *domain.UserProfile) error {
	if u == nil || u.WalletPubkey == "" {
		return storage.ErrInvalidInput
	}
	return nil
}

// GetByWallet always reports not found.
func (*UserStore) GetByWallet(context.Context, string) (*domain.UserProfile, error) {
	return nil, storage.ErrNotFound
}

// KYCStore discards writes and returns no submissions.
type KYCStore struct{}

// NewKYCStore creates a discard KYC store.
func NewKYCStore() *KYCStore { return &KYCStore{} }

var _ storage.KYCStore = (*KYCStore)(nil)

// Insert accepts and drops the payload.
func (*KYCStore) Insert(_ context.Context, pubkey string, _ json.RawMessage) error {
	if pubkey == "" {
		return storage.ErrInvalidInput
	}
	return nil
}

// ListByPubkey returns no submissions.
func (*KYCStore) ListByPubkey(context.Context, string) ([]*domain.KYCSubmission, error) {
	return []*domain.KYCSubmission{}, nil
}
