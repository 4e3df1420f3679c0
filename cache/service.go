// Package cache implements cache-aside reads with explicit invalidation.
//
// Handlers read reference data through GetOrCreate, which serves cached
// values and falls back to a factory on a miss. Mutating handlers call
// Service.Remove for the keys they touched once their work succeeded.
//
// There is no per-key locking. Two concurrent misses on one key may both run
// the factory; the last Set wins. Callers must therefore use idempotent,
// side-effect free factories.
package cache

import (
	"context"

	"github.com/code19m/errx"
	"github.com/jonboulle/clockwork"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rise-and-shine/catalog/logger"
)

// Service stores typed values in a Store under the configured expiration
// policy. It is safe for concurrent use.
type Service struct {
	store    Store
	clock    clockwork.Clock
	log      logger.Logger
	defaults entryOptions
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock replaces the wall clock, typically with clockwork.NewFakeClock in tests.
func WithClock(c clockwork.Clock) ServiceOption {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// WithDefaults sets the expiration policy applied when a call passes no options.
func WithDefaults(opts ...Option) ServiceOption {
	return func(s *Service) {
		for _, opt := range opts {
			opt(&s.defaults)
		}
	}
}

// NewService creates a cache service on store.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		clock: clockwork.NewRealClock(),
		log:   logger.Named("cache"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromConfig creates a service with cfg's expiration defaults on store.
func NewServiceFromConfig(cfg Config, store Store, opts ...ServiceOption) *Service {
	opts = append([]ServiceOption{WithDefaults(
		WithAbsoluteExpiration(cfg.AbsoluteExpiration),
		WithSlidingExpiration(cfg.SlidingExpiration),
	)}, opts...)
	return NewService(store, opts...)
}

// Remove evicts key. A following read misses.
func (s *Service) Remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"key": key}))
	}
	return nil
}

// lookup returns the raw value under key. Expired entries are evicted and
// reported as a miss; a hit slides the access window forward.
func (s *Service) lookup(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	now := s.clock.Now()
	if e.Expired(now) {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.WithContext(ctx).With("key", key).Warnx(delErr)
		}
		return nil, false, nil
	}

	if e.SlidingExpiration > 0 {
		if touchErr := s.store.Touch(ctx, e, now); touchErr != nil {
			s.log.WithContext(ctx).With("key", key).Warnx(touchErr)
		}
	}

	return e.Value, true, nil
}

func (s *Service) write(ctx context.Context, key string, value []byte, opts []Option) error {
	o := s.defaults
	for _, opt := range opts {
		opt(&o)
	}

	now := s.clock.Now()
	e := Entry{
		Key:               key,
		Value:             value,
		SlidingExpiration: o.sliding,
		LastAccess:        now,
	}
	if o.absolute > 0 {
		e.AbsoluteExpiration = now.Add(o.absolute)
	}

	return s.store.Set(ctx, e)
}

// GetOrCreate returns the value cached under key, or runs factory, caches
// its result and returns it. Factory errors are returned as is and nothing
// is cached. Store failures are logged and the factory result is served
// uncached.
func GetOrCreate[T any](
	ctx context.Context,
	s *Service,
	key string,
	factory func(context.Context) (T, error),
	opts ...Option,
) (T, error) {
	if v, ok := get[T](ctx, s, key); ok {
		return v, nil
	}

	v, err := factory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if setErr := set(ctx, s, key, v, opts); setErr != nil {
		s.log.WithContext(ctx).With("key", key).Warnx(setErr)
	}
	return v, nil
}

// Create stores value under key, replacing whatever was there.
func Create[T any](ctx context.Context, s *Service, key string, value T, opts ...Option) error {
	return set(ctx, s, key, value, opts)
}

// Get returns the value cached under key without any fallback.
func Get[T any](ctx context.Context, s *Service, key string) (T, bool) {
	return get[T](ctx, s, key)
}

// GetByID finds the item with the given id inside the collection cached
// under key. It never loads the collection: a missing key or a missing item
// both report false so that the caller can go to the repository.
func GetByID[T interface{ GetID() ID }, ID comparable](
	ctx context.Context,
	s *Service,
	key string,
	id ID,
) (T, bool) {
	var zero T

	items, ok := get[[]T](ctx, s, key)
	if !ok {
		return zero, false
	}

	for _, item := range items {
		if item.GetID() == id {
			return item, true
		}
	}
	return zero, false
}

func get[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var v T

	raw, ok, err := s.lookup(ctx, key)
	if err != nil {
		s.log.WithContext(ctx).With("key", key).Warnx(err)
		return v, false
	}
	if !ok {
		return v, false
	}

	if err = msgpack.Unmarshal(raw, &v); err != nil {
		// stale layout after a deploy; drop it and let the caller rebuild
		s.log.WithContext(ctx).With("key", key).Warnx(errx.Wrap(err))
		_ = s.store.Delete(ctx, key)
		var zero T
		return zero, false
	}
	return v, true
}

func set[T any](ctx context.Context, s *Service, key string, value T, opts []Option) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"key": key}))
	}
	return errx.Wrap(s.write(ctx, key, raw, opts))
}
