package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solapay/internal/domain"
	"solapay/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.TransactionRecord // keyed by signature
	nextID int64
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.TransactionRecord),
	}
}

var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a record unless the signature already exists. Duplicates
// are a no-op, matching the conflict-tolerant Postgres insert.
func (s *TransactionStore) Insert(_ context.Context, t *domain.TransactionRecord) (bool, error) {
	if t == nil || t.Signature == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Signature]; exists {
		return false, nil
	}

	s.nextID++
	copy := *t
	copy.ID = s.nextID
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = time.Now().UTC()
	}
	s.data[t.Signature] = &copy
	return true, nil
}

// ListByAddress retrieves records where address is sender or recipient,
// newest first.
func (s *TransactionStore) ListByAddress(_ context.Context, address string, limit int) ([]*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransactionRecord
	for _, t := range s.data {
		if t.FromAddress == address || t.ToAddress == address {
			copy := *t
			result = append(result, &copy)
		}
	}

	sortNewestFirst(result)
	return capLimit(result, limit), nil
}

// ListRecent retrieves the most recent records across all accounts.
func (s *TransactionStore) ListRecent(_ context.Context, limit int) ([]*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TransactionRecord, 0, len(s.data))
	for _, t := range s.data {
		copy := *t
		result = append(result, &copy)
	}

	sortNewestFirst(result)
	return capLimit(result, limit), nil
}

func sortNewestFirst(records []*domain.TransactionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
}

func capLimit(records []*domain.TransactionRecord, limit int) []*domain.TransactionRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}
