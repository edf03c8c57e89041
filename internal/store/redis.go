package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/sentinel/internal/ratelimit"
)

// addScript writes the counter hash only when the key does not exist yet,
// and pins its expiry to the end of the window.
var addScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "total", ARGV[1], "expires", ARGV[2], "last_seen", ARGV[3])
redis.call("PEXPIREAT", KEYS[1], ARGV[4])
return 1
`)

// RedisStore is a Redis implementation of ratelimit.Store.
// Each counter is a hash that Redis expires when its window closes.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis-backed counter store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) (ratelimit.Counter, bool, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return ratelimit.Counter{}, false, err
	}

	if len(result) == 0 {
		return ratelimit.Counter{}, false, nil
	}

	c, err := decodeCounter(result)
	if err != nil {
		return ratelimit.Counter{}, false, fmt.Errorf("decode counter %q: %w", key, err)
	}

	return c, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, counter ratelimit.Counter) error {
	k := r.prefix + key

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, map[string]interface{}{
			"total":     counter.Total,
			"expires":   counter.Expires.UnixNano(),
			"last_seen": counter.LastSeen.UnixNano(),
		})
		pipe.PExpireAt(ctx, k, counter.Expires)

		return nil
	})

	return err
}

func (r *RedisStore) TryAdd(ctx context.Context, key string, counter ratelimit.Counter) (bool, error) {
	added, err := addScript.Run(ctx, r.client, []string{r.prefix + key},
		counter.Total,
		counter.Expires.UnixNano(),
		counter.LastSeen.UnixNano(),
		counter.Expires.UnixMilli(),
	).Int()
	if err != nil {
		return false, err
	}

	return added == 1, nil
}

func decodeCounter(fields map[string]string) (ratelimit.Counter, error) {
	total, err := strconv.ParseInt(fields["total"], 10, 64)
	if err != nil {
		return ratelimit.Counter{}, fmt.Errorf("total: %w", err)
	}

	expires, err := strconv.ParseInt(fields["expires"], 10, 64)
	if err != nil {
		return ratelimit.Counter{}, fmt.Errorf("expires: %w", err)
	}

	var lastSeen time.Time

	if ts, ok := fields["last_seen"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			lastSeen = time.Unix(0, nanos)
		}
	}

	return ratelimit.Counter{
		Total:    total,
		Expires:  time.Unix(0, expires),
		LastSeen: lastSeen,
	}, nil
}

// Compile-time check.
var _ ratelimit.Store = (*RedisStore)(nil)
