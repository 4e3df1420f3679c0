package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
	"github.com/viccon/sturdyc"
	"github.com/vmihailenco/msgpack/v5"
)

// Store persists cache entries. Expiration is decided by Service; a store
// may drop entries earlier (capacity eviction, TTL) but never later than
// Entry.TTL allows.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, e Entry) error
	Delete(ctx context.Context, key string) error
	// Touch stores prev with LastAccess moved to lastAccess, but only while
	// the stored entry is still prev. A deleted or replaced entry is left
	// alone, so a hit can never bring back a removed value.
	Touch(ctx context.Context, prev Entry, lastAccess time.Time) error
}

// MemoryStore keeps entries in a sharded in-process sturdyc cache.
type MemoryStore struct {
	// serializes writes so that Touch can compare and set
	mu     sync.Mutex
	client *sturdyc.Client[Entry]
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	return &MemoryStore{
		client: sturdyc.New[Entry](
			cfg.Capacity,
			cfg.NumShards,
			cfg.TTL,
			cfg.EvictionPercentage,
			opts...,
		),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	e, ok := s.client.Get(key)
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.Set(e.Key, e)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.Delete(key)
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, prev Entry, lastAccess time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.client.Get(prev.Key)
	if !ok || !sameValue(cur, prev) {
		return nil
	}
	cur.LastAccess = lastAccess
	s.client.Set(cur.Key, cur)
	return nil
}

// sameValue reports whether a and b hold the same write, ignoring LastAccess
// so that concurrent hits on one entry all slide it.
func sameValue(a, b Entry) bool {
	return a.Key == b.Key &&
		bytes.Equal(a.Value, b.Value) &&
		a.AbsoluteExpiration.Equal(b.AbsoluteExpiration) &&
		a.SlidingExpiration == b.SlidingExpiration
}

// touchScript replaces KEYS[1] with ARGV[2] only while it still holds ARGV[1].
// ARGV[3] is the new TTL in milliseconds, 0 for none.
//
//nolint:gochecknoglobals // scripts are cached by sha and shared
var touchScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// RedisStore keeps msgpack-encoded entries in Redis so that several
// processes share one cache.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore creates a store on rdb. Every key is prefixed with prefix.
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errx.Wrap(err)
	}

	var e Entry
	if err = msgpack.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, errx.Wrap(err, errx.WithDetails(errx.D{"key": key}))
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, e Entry) error {
	raw, err := msgpack.Marshal(e)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"key": e.Key}))
	}

	return errx.Wrap(s.rdb.Set(ctx, s.prefix+e.Key, raw, redisTTL(e)).Err())
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return errx.Wrap(s.rdb.Del(ctx, s.prefix+key).Err())
}

// Touch compares the encoded entries. Encoding is deterministic, so prev as
// returned by Get encodes to exactly the stored bytes.
func (s *RedisStore) Touch(ctx context.Context, prev Entry, lastAccess time.Time) error {
	old, err := msgpack.Marshal(prev)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"key": prev.Key}))
	}

	next := prev
	next.LastAccess = lastAccess
	raw, err := msgpack.Marshal(next)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"key": prev.Key}))
	}

	ttl := redisTTL(next)
	if ttl > 0 && ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	err = touchScript.Run(ctx, s.rdb, []string{s.prefix + prev.Key}, old, raw, ttl.Milliseconds()).Err()
	return errx.Wrap(err)
}

// redisTTL is the key expiry for e. An entry that is already past its
// deadline still gets a short positive TTL since 0 would mean forever.
func redisTTL(e Entry) time.Duration {
	ttl := e.TTL()
	if ttl < 0 {
		return time.Millisecond
	}
	return ttl
}
