package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/logger"
)

const prefix = "catalog:"

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewRedisStore(rdb, prefix), m
}

func newMemoryStore() *cache.MemoryStore {
	return cache.NewMemoryStore(cache.MemoryConfig{
		Capacity:           100,
		NumShards:          4,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	})
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, store cache.Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newMemoryStore())
	})
	t.Run("redis", func(t *testing.T) {
		store, _ := newRedisStore(t)
		fn(t, store)
	})
}

func TestRedisStore_PrefixesKeys(t *testing.T) {
	store, m := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, cache.Entry{Key: "regions", Value: []byte("x"), LastAccess: time.Now()}))

	assert.True(t, m.Exists(prefix+"regions"))
	assert.False(t, m.Exists("regions"))

	require.NoError(t, store.Delete(ctx, "regions"))
	assert.False(t, m.Exists(prefix+"regions"))
}

func TestRedisStore_MissingKeyIsMiss(t *testing.T) {
	store, _ := newRedisStore(t)

	_, ok, err := store.Get(context.Background(), "regions")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptValueIsError(t *testing.T) {
	store, m := newRedisStore(t)
	require.NoError(t, m.Set(prefix+"regions", "not msgpack"))

	_, ok, err := store.Get(context.Background(), "regions")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore_TTLFollowsEntry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		entry cache.Entry
		ttl   time.Duration
	}{
		{"no expiration", cache.Entry{LastAccess: now}, 0},
		{"absolute", cache.Entry{LastAccess: now, AbsoluteExpiration: now.Add(time.Hour)}, time.Hour},
		{"sliding shorter than absolute", cache.Entry{
			LastAccess: now, AbsoluteExpiration: now.Add(time.Hour), SlidingExpiration: 10 * time.Minute,
		}, 10 * time.Minute},
		{"already past deadline", cache.Entry{LastAccess: now, AbsoluteExpiration: now.Add(-time.Minute)}, time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, m := newRedisStore(t)
			tc.entry.Key = "regions"
			tc.entry.Value = []byte("x")

			require.NoError(t, store.Set(context.Background(), tc.entry))
			assert.Equal(t, tc.ttl, m.TTL(prefix+"regions"))
		})
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := cache.Entry{
		Key:                "regions",
		Value:              []byte{0x91, 0x01},
		AbsoluteExpiration: now.Add(time.Hour),
		SlidingExpiration:  time.Minute,
		LastAccess:         now,
	}
	require.NoError(t, store.Set(ctx, in))

	out, ok, err := store.Get(ctx, "regions")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Value, out.Value)
	assert.True(t, in.AbsoluteExpiration.Equal(out.AbsoluteExpiration))
	assert.True(t, in.LastAccess.Equal(out.LastAccess))
	assert.Equal(t, in.SlidingExpiration, out.SlidingExpiration)
}

func TestRedisStore_TouchRefreshesTTL(t *testing.T) {
	store, m := newRedisStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, cache.Entry{
		Key:                "regions",
		Value:              []byte("x"),
		AbsoluteExpiration: now.Add(time.Hour),
		SlidingExpiration:  10 * time.Minute,
		LastAccess:         now,
	}))

	prev, ok, err := store.Get(ctx, "regions")
	require.NoError(t, err)
	require.True(t, ok)

	// 55 minutes later the absolute deadline is closer than the sliding one
	require.NoError(t, store.Touch(ctx, prev, now.Add(55*time.Minute)))
	assert.Equal(t, 5*time.Minute, m.TTL(prefix+"regions"))

	got, _, err := store.Get(ctx, "regions")
	require.NoError(t, err)
	assert.True(t, now.Add(55*time.Minute).Equal(got.LastAccess))
}

func TestStore_TouchSkipsRemovedEntry(t *testing.T) {
	stores(t, func(t *testing.T, store cache.Store) {
		ctx := context.Background()
		now := time.Now()
		require.NoError(t, store.Set(ctx, cache.Entry{Key: "regions", Value: []byte("old"), SlidingExpiration: time.Minute, LastAccess: now}))

		prev, ok, err := store.Get(ctx, "regions")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Delete(ctx, "regions"))
		require.NoError(t, store.Touch(ctx, prev, now.Add(time.Second)))

		_, ok, err = store.Get(ctx, "regions")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStore_TouchSkipsReplacedEntry(t *testing.T) {
	stores(t, func(t *testing.T, store cache.Store) {
		ctx := context.Background()
		now := time.Now()
		require.NoError(t, store.Set(ctx, cache.Entry{Key: "regions", Value: []byte("old"), SlidingExpiration: time.Minute, LastAccess: now}))

		prev, _, err := store.Get(ctx, "regions")
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, cache.Entry{Key: "regions", Value: []byte("new"), SlidingExpiration: time.Minute, LastAccess: now}))
		require.NoError(t, store.Touch(ctx, prev, now.Add(time.Second)))

		got, ok, err := store.Get(ctx, "regions")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("new"), got.Value)
		assert.True(t, now.Equal(got.LastAccess))
	})
}

// removeOnHit evicts the key through the service right after the store
// served a hit, i.e. between the read and the sliding refresh.
type removeOnHit struct {
	cache.Store
	svc   *cache.Service
	armed atomic.Bool
}

func (s *removeOnHit) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	e, ok, err := s.Store.Get(ctx, key)
	if ok && s.armed.CompareAndSwap(true, false) {
		if rmErr := s.svc.Remove(ctx, key); rmErr != nil {
			return cache.Entry{}, false, rmErr
		}
	}
	return e, ok, err
}

func TestGetOrCreate_RemoveDuringHitIsNotUndone(t *testing.T) {
	stores(t, func(t *testing.T, store cache.Store) {
		ctx := context.Background()
		wrapped := &removeOnHit{Store: store}
		svc := cache.NewService(wrapped,
			cache.WithClock(clockwork.NewFakeClock()),
			cache.WithLogger(logger.NewNop()),
			cache.WithDefaults(cache.WithSlidingExpiration(time.Minute)),
		)
		wrapped.svc = svc
		var calls atomic.Int32

		_, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1, Name: "old"}}))
		require.NoError(t, err)

		wrapped.armed.Store(true)
		_, err = cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, nil))
		require.NoError(t, err)
		require.Equal(t, int32(1), calls.Load())

		got, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1, Name: "new"}}))
		require.NoError(t, err)
		assert.Equal(t, []region{{ID: 1, Name: "new"}}, got)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestGetOrCreate_ConcurrentMissesAllRunFactory(t *testing.T) {
	const workers = 8
	svc, _ := newService(t)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	factory := func(context.Context) ([]region, error) {
		n := calls.Add(1)
		if n == workers {
			close(release)
		}
		// nothing is stored until every worker has missed
		<-release
		return []region{{ID: int64(n)}}, nil
	}

	results := make([][]region, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.GetOrCreate(ctx, svc, "regions", factory)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(workers), calls.Load())

	cached, ok := cache.Get[[]region](ctx, svc, "regions")
	require.True(t, ok)
	assert.Contains(t, results, cached)
}

func TestGetOrCreate_ParallelHitsAndRemoves(t *testing.T) {
	svc, _ := newService(t, cache.WithDefaults(cache.WithSlidingExpiration(time.Minute)))
	ctx := context.Background()
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if i%4 == 0 {
					assert.NoError(t, svc.Remove(ctx, "regions"))
					continue
				}
				_, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}}))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, svc.Remove(ctx, "regions"))
	before := calls.Load()

	got, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 2}}))
	require.NoError(t, err)
	assert.Equal(t, []region{{ID: 2}}, got)
	assert.Equal(t, before+1, calls.Load())
}
