package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/serroba/sentinel/internal/ratelimit"
	"github.com/serroba/sentinel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore(t *testing.T) {
	quota := ratelimit.MustQuota(5, 1, ratelimit.UnitMinute)

	t.Run("get missing key reports not found", func(t *testing.T) {
		s := store.NewMemoryStore()

		_, found, err := s.Get(context.Background(), "missing")

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("put then get returns the counter", func(t *testing.T) {
		s := store.NewMemoryStore()
		counter := ratelimit.NewCounter(quota, baseTime)

		err := s.Put(context.Background(), "key1", counter)
		require.NoError(t, err)

		got, found, err := s.Get(context.Background(), "key1")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, counter, got)
	})

	t.Run("put replaces existing counter", func(t *testing.T) {
		s := store.NewMemoryStore()
		counter := ratelimit.NewCounter(quota, baseTime)
		_ = s.Put(context.Background(), "key1", counter)

		counter.Total = 4
		err := s.Put(context.Background(), "key1", counter)
		require.NoError(t, err)

		got, _, _ := s.Get(context.Background(), "key1")
		assert.Equal(t, int64(4), got.Total)
	})

	t.Run("try add does not clobber existing counter", func(t *testing.T) {
		s := store.NewMemoryStore()
		first := ratelimit.NewCounter(quota, baseTime)
		first.Total = 3
		_ = s.Put(context.Background(), "key1", first)

		added, err := s.TryAdd(context.Background(), "key1", ratelimit.NewCounter(quota, baseTime))

		require.NoError(t, err)
		assert.False(t, added)

		got, _, _ := s.Get(context.Background(), "key1")
		assert.Equal(t, int64(3), got.Total, "existing counter must survive")
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewMemoryStore()

		added1, _ := s.TryAdd(context.Background(), "key1", ratelimit.NewCounter(quota, baseTime))
		added2, _ := s.TryAdd(context.Background(), "key2", ratelimit.NewCounter(quota, baseTime))

		assert.True(t, added1)
		assert.True(t, added2)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("concurrent try add inserts exactly once", func(t *testing.T) {
		s := store.NewMemoryStore()

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			added int
		)

		for range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				ok, err := s.TryAdd(context.Background(), "shared", ratelimit.NewCounter(quota, baseTime))
				if err == nil && ok {
					mu.Lock()
					added++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, added)
	})
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	quota := ratelimit.MustQuota(5, 1, ratelimit.UnitMinute)
	s := store.NewMemoryStore()

	for i := range 3 {
		_ = s.Put(context.Background(), fmt.Sprintf("old%d", i), ratelimit.NewCounter(quota, baseTime))
	}

	_ = s.Put(context.Background(), "fresh", ratelimit.NewCounter(quota, baseTime.Add(time.Minute)))

	removed, err := s.DeleteExpired(context.Background(), baseTime.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, 1, s.Len())

	_, found, _ := s.Get(context.Background(), "fresh")
	assert.True(t, found, "counter with an open window must be kept")
}
