package cache

import "time"

// Entry is one cached value with its expiration policy.
//
// An entry expires at AbsoluteExpiration (when set) or once it has not been
// read for SlidingExpiration (when positive), whichever comes first.
type Entry struct {
	Key                string        `msgpack:"key"`
	Value              []byte        `msgpack:"value"`
	AbsoluteExpiration time.Time     `msgpack:"absolute_expiration"`
	SlidingExpiration  time.Duration `msgpack:"sliding_expiration"`
	LastAccess         time.Time     `msgpack:"last_access"`
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	if !e.AbsoluteExpiration.IsZero() && !now.Before(e.AbsoluteExpiration) {
		return true
	}
	if e.SlidingExpiration > 0 && now.Sub(e.LastAccess) >= e.SlidingExpiration {
		return true
	}
	return false
}

// TTL returns how long the entry stays valid counted from LastAccess, or 0
// when it never expires.
func (e Entry) TTL() time.Duration {
	var ttl time.Duration
	if !e.AbsoluteExpiration.IsZero() {
		ttl = e.AbsoluteExpiration.Sub(e.LastAccess)
	}
	if e.SlidingExpiration > 0 && (ttl == 0 || e.SlidingExpiration < ttl) {
		ttl = e.SlidingExpiration
	}
	return ttl
}
