package rediswr

// Config defines the configuration options for Redis connections.
type Config struct {
	// Addrs is the list of Redis server addresses in the format "host:port,host2:port2".
	Addrs string `yaml:"addrs" validate:"required" default:"localhost:6379"`

	// Username is the username for the Redis server/cluster.
	Username string `yaml:"username"`

	// Password is the password for the Redis server/cluster.
	Password string `yaml:"password" mask:"true"`

	// DB selects the logical database. Ignored in cluster mode.
	DB int `yaml:"db" validate:"min=0"`

	// IsClusterMode indicates whether the Redis server is a Redis cluster.
	IsClusterMode bool `yaml:"is_cluster_mode"`
}
