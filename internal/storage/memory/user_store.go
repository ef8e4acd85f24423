package memory

import (
	"context"
	"sync"
	"time"

	"solapay/internal/domain"
	"solapay/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.UserProfile // keyed by wallet pubkey
	nextID int64
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.UserProfile),
	}
}

var _ storage.UserStore = (*UserStore)(nil)

// Upsert inserts or updates a profile keyed by wallet pubkey.
func (s *UserStore) Upsert(_ context.Context, u *domain.UserProfile) error {
	if u == nil || u.WalletPubkey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *u
	if existing, ok := s.data[u.WalletPubkey]; ok {
		copy.ID = existing.ID
		copy.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		copy.ID = s.nextID
		copy.CreatedAt = time.Now().UTC()
	}
	s.data[u.WalletPubkey] = &copy
	return nil
}

// GetByWallet retrieves a profile by wallet pubkey.
func (s *UserStore) GetByWallet(_ context.Context, pubkey string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[pubkey]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *u
	return &copy, nil
}
