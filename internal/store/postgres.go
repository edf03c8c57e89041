package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/sentinel/internal/ratelimit"
)

const createCountersTable = `
	CREATE TABLE IF NOT EXISTS rate_limit_counters (
		key        TEXT PRIMARY KEY,
		total      BIGINT      NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		last_seen  TIMESTAMPTZ NOT NULL
	)
`

// PostgresStore is a PostgreSQL implementation of ratelimit.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed counter store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the counters table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, createCountersTable)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) (ratelimit.Counter, bool, error) {
	query := `
		SELECT total, expires_at, last_seen
		FROM rate_limit_counters
		WHERE key = $1
	`

	var c ratelimit.Counter

	err := p.pool.QueryRow(ctx, query, key).Scan(&c.Total, &c.Expires, &c.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ratelimit.Counter{}, false, nil
		}

		return ratelimit.Counter{}, false, err
	}

	return c, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, counter ratelimit.Counter) error {
	query := `
		INSERT INTO rate_limit_counters (key, total, expires_at, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET total = EXCLUDED.total, expires_at = EXCLUDED.expires_at, last_seen = EXCLUDED.last_seen
	`

	_, err := p.pool.Exec(ctx, query, key, counter.Total,
		counter.Expires.Truncate(ratelimit.Resolution), counter.LastSeen.Truncate(ratelimit.Resolution))

	return err
}

func (p *PostgresStore) TryAdd(ctx context.Context, key string, counter ratelimit.Counter) (bool, error) {
	query := `
		INSERT INTO rate_limit_counters (key, total, expires_at, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query, key, counter.Total,
		counter.Expires.Truncate(ratelimit.Resolution), counter.LastSeen.Truncate(ratelimit.Resolution))
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// DeleteExpired removes counters whose window closed at or before before.
func (p *PostgresStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rate_limit_counters WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Compile-time check.
var _ ratelimit.Store = (*PostgresStore)(nil)
