package cache

import (
	"time"

	"github.com/rise-and-shine/catalog/rediswr"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects the cache backend and the default expiration policy.
type Config struct {
	// Driver is "memory" for a per-process cache or "redis" for a shared one.
	Driver string `yaml:"driver" validate:"oneof=memory redis" default:"memory"`

	// AbsoluteExpiration bounds the lifetime of every entry. Zero disables it.
	AbsoluteExpiration time.Duration `yaml:"absolute_expiration" validate:"min=0" default:"1h"`

	// SlidingExpiration evicts entries that were not read for this long.
	// Zero disables it.
	SlidingExpiration time.Duration `yaml:"sliding_expiration" validate:"min=0" default:"10m"`

	Memory MemoryConfig `yaml:"memory"`

	Redis RedisConfig `yaml:"redis"`
}

// MemoryConfig tunes the in-process sturdyc store.
type MemoryConfig struct {
	Capacity           int           `yaml:"capacity"            validate:"gt=0"         default:"10000"`
	NumShards          int           `yaml:"num_shards"          validate:"gt=0"         default:"64"`
	TTL                time.Duration `yaml:"ttl"                 validate:"gt=0"         default:"24h"`
	EvictionPercentage int           `yaml:"eviction_percentage" validate:"min=1,max=100" default:"10"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`
}

// RedisConfig configures the shared Redis store.
type RedisConfig struct {
	rediswr.Config `yaml:",inline"`

	KeyPrefix string `yaml:"key_prefix" default:"catalog:"`
}
