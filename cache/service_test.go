package cache_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/logger"
)

type region struct {
	ID   int64
	Name string
}

func (r region) GetID() int64 { return r.ID }

func newService(t *testing.T, opts ...cache.ServiceOption) (*cache.Service, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := cache.NewMemoryStore(cache.MemoryConfig{
		Capacity:           100,
		NumShards:          4,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	})
	opts = append([]cache.ServiceOption{cache.WithClock(clock), cache.WithLogger(logger.NewNop())}, opts...)
	return cache.NewService(store, opts...), clock
}

func countingFactory(calls *atomic.Int32, value []region) func(context.Context) ([]region, error) {
	return func(context.Context) ([]region, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestGetOrCreate_MissThenHit(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	var calls atomic.Int32
	regions := []region{{ID: 1, Name: "Tashkent"}}

	got, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, regions))
	require.NoError(t, err)
	assert.Equal(t, regions, got)

	got, err = cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, nil))
	require.NoError(t, err)
	assert.Equal(t, regions, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrCreate_FactoryErrorIsNotCached(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	boom := errx.New("source down", errx.WithCode("SOURCE_DOWN"))

	_, err := cache.GetOrCreate(ctx, svc, "regions", func(context.Context) ([]region, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	_, ok := cache.Get[[]region](ctx, svc, "regions")
	assert.False(t, ok)

	var calls atomic.Int32
	_, err = cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrCreate_AbsoluteExpiration(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()
	var calls atomic.Int32
	opts := []cache.Option{cache.WithAbsoluteExpiration(time.Minute)}

	_, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}}), opts...)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	_, err = cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, nil), opts...)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	_, err = cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, nil), opts...)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrCreate_SlidingExpirationRefreshesOnHit(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()
	var calls atomic.Int32
	opts := []cache.Option{cache.WithSlidingExpiration(10 * time.Second)}

	_, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}}), opts...)
	require.NoError(t, err)

	for range 5 {
		clock.Advance(8 * time.Second)
		_, ok := cache.Get[[]region](ctx, svc, "regions")
		require.True(t, ok)
	}

	clock.Advance(10 * time.Second)
	_, ok := cache.Get[[]region](ctx, svc, "regions")
	assert.False(t, ok)
}

func TestGetOrCreate_AbsoluteWinsOverSliding(t *testing.T) {
	svc, clock := newService(t, cache.WithDefaults(
		cache.WithAbsoluteExpiration(20*time.Second),
		cache.WithSlidingExpiration(10*time.Second),
	))
	ctx := context.Background()

	require.NoError(t, cache.Create(ctx, svc, "regions", []region{{ID: 1}}))

	clock.Advance(9 * time.Second)
	_, ok := cache.Get[[]region](ctx, svc, "regions")
	require.True(t, ok)

	clock.Advance(9 * time.Second)
	_, ok = cache.Get[[]region](ctx, svc, "regions")
	require.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = cache.Get[[]region](ctx, svc, "regions")
	assert.False(t, ok)
}

func TestCreate_Overwrites(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, cache.Create(ctx, svc, "regions", []region{{ID: 1}}))
	require.NoError(t, cache.Create(ctx, svc, "regions", []region{{ID: 2}}))

	got, ok := cache.Get[[]region](ctx, svc, "regions")
	require.True(t, ok)
	assert.Equal(t, []region{{ID: 2}}, got)
}

func TestRemove_InvalidatesImmediately(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	var calls atomic.Int32

	_, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}}))
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, "regions"))

	got, err := cache.GetOrCreate(ctx, svc, "regions", countingFactory(&calls, []region{{ID: 1}, {ID: 2}}))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRemove_OtherKeysUntouched(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, cache.Create(ctx, svc, "regions", []region{{ID: 1}}))
	require.NoError(t, cache.Create(ctx, svc, "amenities", []region{{ID: 9}}))
	require.NoError(t, svc.Remove(ctx, "regions"))

	_, ok := cache.Get[[]region](ctx, svc, "amenities")
	assert.True(t, ok)
}

func TestGetByID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, ok := cache.GetByID[region](ctx, svc, "regions", int64(1))
	assert.False(t, ok, "missing key must not load anything")

	require.NoError(t, cache.Create(ctx, svc, "regions", []region{{ID: 1, Name: "Tashkent"}, {ID: 2, Name: "Samarkand"}}))

	got, ok := cache.GetByID[region](ctx, svc, "regions", int64(2))
	require.True(t, ok)
	assert.Equal(t, "Samarkand", got.Name)

	_, ok = cache.GetByID[region](ctx, svc, "regions", int64(3))
	assert.False(t, ok)
}

func TestGet_TypeMismatchIsMiss(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, cache.Create(ctx, svc, "regions", "not a list"))

	_, ok := cache.Get[[]region](ctx, svc, "regions")
	assert.False(t, ok)
}
