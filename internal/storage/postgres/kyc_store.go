package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/storage"
)

// KYCStore implements storage.KYCStore using PostgreSQL.
type KYCStore struct {
	pool *Pool
}

// NewKYCStore creates a new KYCStore.
func NewKYCStore(pool *Pool) *KYCStore {
	return &KYCStore{pool: pool}
}

// Compile-time interface check.
var _ storage.KYCStore = (*KYCStore)(nil)

// Insert stores an opaque KYC payload for a pubkey.
func (s *KYCStore) Insert(ctx context.Context, pubkey string, data json.RawMessage) error {
	if pubkey == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO kyc (user_pubkey, data) VALUES ($1, $2)`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query, pubkey, data)
	observability.RecordDBQuery("kyc.insert", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("insert kyc submission: %w", err)
	}
	return nil
}

// ListByPubkey retrieves submissions for a pubkey, newest first.
func (s *KYCStore) ListByPubkey(ctx context.Context, pubkey string) ([]*domain.KYCSubmission, error) {
	query := `
		SELECT id, user_pubkey, data, created_at
		FROM kyc
		WHERE user_pubkey = $1
		ORDER BY created_at DESC, id DESC
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, pubkey)
	observability.RecordDBQuery("kyc.list_by_pubkey", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list kyc submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.KYCSubmission
	for rows.Next() {
		var k domain.KYCSubmission
		if err := rows.Scan(&k.ID, &k.UserPubkey, &k.Data, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan kyc row: %w", err)
		}
		subs = append(subs, &k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kyc rows: %w", err)
	}

	return subs, nil
}
