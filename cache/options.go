package cache

import "time"

type entryOptions struct {
	absolute time.Duration
	sliding  time.Duration
}

// Option sets the expiration policy of a single write.
type Option func(*entryOptions)

// WithAbsoluteExpiration expires the entry d after it was written.
// Zero means no absolute deadline.
func WithAbsoluteExpiration(d time.Duration) Option {
	return func(o *entryOptions) {
		o.absolute = max(d, 0)
	}
}

// WithSlidingExpiration expires the entry once it has not been read for d.
// Zero disables sliding expiration.
func WithSlidingExpiration(d time.Duration) Option {
	return func(o *entryOptions) {
		o.sliding = max(d, 0)
	}
}
