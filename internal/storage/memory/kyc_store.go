package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"solapay/internal/domain"
	"solapay/internal/storage"
)

// KYCStore is an in-memory implementation of storage.KYCStore.
type KYCStore struct {
	mu     sync.RWMutex
	data   []*domain.KYCSubmission
	nextID int64
}

// NewKYCStore creates a new in-memory KYC store.
func NewKYCStore() *KYCStore {
	return &KYCStore{}
}

var _ storage.KYCStore = (*KYCStore)(nil)

// Insert stores an opaque KYC payload for a pubkey.
func (s *KYCStore) Insert(_ context.Context, pubkey string, data json.RawMessage) error {
	if pubkey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.data = append(s.data, &domain.KYCSubmission{
		ID:         s.nextID,
		UserPubkey: pubkey,
		Data:       append(json.RawMessage(nil), data...),
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// ListByPubkey retrieves submissions for a pubkey, newest first.
func (s *KYCStore) ListByPubkey(_ context.Context, pubkey string) ([]*domain.KYCSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.KYCSubmission
	for _, k := range s.data {
		if k.UserPubkey == pubkey {
			copy := *k
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})

	return result, nil
}
