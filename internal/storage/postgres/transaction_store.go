package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solapay/internal/domain"
	"solapay/internal/observability"
	"solapay/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a transaction record unless the signature already exists.
// The uniqueness guarantee lives in the unique index on signature; the
// conflict is resolved atomically by the database, never by a
// check-then-insert in application code.
func (s *TransactionStore) Insert(ctx context.Context, t *domain.TransactionRecord) (bool, error) {
	if t == nil || t.Signature == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (
			signature, from_address, to_address, amount_lamports,
			network, fiat_currency, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (signature) DO NOTHING
	`

	start := time.Now()
	tag, err := s.pool.Exec(ctx, query,
		t.Signature, t.FromAddress, t.ToAddress, t.AmountLamports,
		t.Network, t.FiatCurrency, t.Metadata,
	)
	observability.RecordDBQuery("transactions.insert", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert transaction: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByAddress retrieves records where address is sender or recipient,
// newest first.
func (s *TransactionStore) ListByAddress(ctx context.Context, address string, limit int) ([]*domain.TransactionRecord, error) {
	query := `
		SELECT id, signature, from_address, to_address, amount_lamports,
		       network, fiat_currency, metadata, created_at
		FROM transactions
		WHERE from_address = $1 OR to_address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, address, limit)
	observability.RecordDBQuery("transactions.list_by_address", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list transactions by address: %w", err)
	}
	defer rows.Close()

	return scanTransactionRecords(rows)
}

// ListRecent retrieves the most recent records across all accounts.
func (s *TransactionStore) ListRecent(ctx context.Context, limit int) ([]*domain.TransactionRecord, error) {
	query := `
		SELECT id, signature, from_address, to_address, amount_lamports,
		       network, fiat_currency, metadata, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observability.RecordDBQuery("transactions.list_recent", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactionRecords(rows)
}

// scanTransactionRecords scans rows into a slice of TransactionRecord.
func scanTransactionRecords(rows pgx.Rows) ([]*domain.TransactionRecord, error) {
	var records []*domain.TransactionRecord

	for rows.Next() {
		var t domain.TransactionRecord

		err := rows.Scan(
			&t.ID, &t.Signature, &t.FromAddress, &t.ToAddress, &t.AmountLamports,
			&t.Network, &t.FiatCurrency, &t.Metadata, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		records = append(records, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return records, nil
}
