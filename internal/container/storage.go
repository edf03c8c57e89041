package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/sentinel/internal/ratelimit"
	"github.com/serroba/sentinel/internal/store"
	"go.uber.org/zap"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ErrNoExpiry is returned when the configured store expires counters itself.
var ErrNoExpiry = errors.New("store expires counters natively")

const connectTimeout = 5 * time.Second

// RedisClient owns the shared Redis connection.
type RedisClient struct {
	Client *redis.Client
}

// Shutdown closes the connection.
func (c *RedisClient) Shutdown() error {
	return c.Client.Close()
}

// PostgresPool owns the shared PostgreSQL connection pool.
type PostgresPool struct {
	Pool *pgxpool.Pool
}

// Shutdown closes the pool.
func (p *PostgresPool) Shutdown() error {
	p.Pool.Close()

	return nil
}

// RedisPackage provides the Redis client. The connection is opened lazily.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*PostgresPool, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

// StorePackage provides the counter store selected by Options.Store and the
// janitor evicting its stale counters.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Store {
		case StoreMemory, "":
			return store.NewMemoryStore(), nil
		case StoreRedis:
			return store.NewRedisStore(do.MustInvoke[*RedisClient](i).Client), nil
		case StorePostgres:
			pg := store.NewPostgresStore(do.MustInvoke[*PostgresPool](i).Pool)

			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()

			if err := pg.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}

			return pg, nil
		default:
			return nil, fmt.Errorf("unknown store backend %q", opts.Store)
		}
	})

	do.Provide(injector, func(i *do.Injector) (*store.Janitor, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		expirer, ok := do.MustInvoke[ratelimit.Store](i).(store.Expirer)
		if !ok {
			return nil, ErrNoExpiry
		}

		if opts.SweepSeconds <= 0 {
			return nil, fmt.Errorf("sweep interval must be positive, got %d", opts.SweepSeconds)
		}

		return store.NewJanitor(expirer, time.Duration(opts.SweepSeconds)*time.Second, logger), nil
	})
}
