package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing defaults. The API issues short point queries only, so a
// small pool with a modest idle timeout covers it.
const (
	defaultMaxConns    = 8
	defaultIdleTimeout = 5 * time.Minute
)

// Pool wraps pgxpool.Pool so stores depend on one injected handle.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a connection pool against dsn and verifies it with a
// ping. maxConns overrides the pool ceiling when positive; zero keeps
// the default. DSN pool parameters win over both.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if !dsnSetsPoolSize(dsn) {
		cfg.MaxConns = defaultMaxConns
		if maxConns > 0 {
			cfg.MaxConns = maxConns
		}
	}
	cfg.MaxConnIdleTime = defaultIdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// dsnSetsPoolSize reports whether the DSN carries its own pool_max_conns.
func dsnSetsPoolSize(dsn string) bool {
	return strings.Contains(dsn, "pool_max_conns")
}

// unique_violation, raised when an insert collides with the signature
// or pubkey uniqueness constraints.
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique constraint
// violation. The transaction store treats these as replays.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// isNotFoundError reports whether a single-row query matched nothing.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
