package postgres

import (
	"context"
	"fmt"
	"time"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Upsert inserts or updates a profile keyed by wallet pubkey.
func (s *UserStore) Upsert(ctx context.Context, u *domain.UserProfile) error {
	if u == nil || u.WalletPubkey == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO users (google_id, email, name, wallet_pubkey)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_pubkey) DO UPDATE
		SET google_id = EXCLUDED.google_id,
		    email     = EXCLUDED.email,
		    name      = EXCLUDED.name
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query, u.GoogleID, u.Email, u.Name, u.WalletPubkey)
	observability.RecordDBQuery("users.upsert", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByWallet retrieves a profile by wallet pubkey.
func (s *UserStore) GetByWallet(ctx context.Context, pubkey string) (*domain.UserProfile, error) {
	query := `
		SELECT id, google_id, email, name, wallet_pubkey, created_at
		FROM users
		WHERE wallet_pubkey = $1
	`

	var u domain.UserProfile
	start := time.Now()
	err := s.pool.QueryRow(ctx, query, pubkey).Scan(
		&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.WalletPubkey, &u.CreatedAt,
	)
	if isNotFoundError(err) {
		// A missing profile is an answer, not a query failure.
		observability.RecordDBQuery("users.get_by_wallet", time.Since(start).Seconds(), nil)
		return nil, storage.ErrNotFound
	}
	observability.RecordDBQuery("users.get_by_wallet", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get user by wallet: %w", err)
	}
	return &u, nil
}
