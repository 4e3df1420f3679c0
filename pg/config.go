package pg

import (
	"net/url"
	"strconv"
	"time"
)

// Config defines the configuration options for PostgreSQL connections.
type Config struct {
	// Debug logs every query at debug level. Failed and slow queries are
	// logged regardless.
	Debug bool `yaml:"debug" default:"false"`

	// SlowQueryThreshold marks queries taking longer than this as slow.
	// Zero disables slow query detection.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" default:"200ms"`

	Host     string `yaml:"host"     validate:"required"`
	Port     int    `yaml:"port"     validate:"required"`
	User     string `yaml:"user"     validate:"required"`
	Password string `yaml:"password" validate:"required" mask:"true"`
	Database string `yaml:"database" validate:"required"`

	// SSLMode specifies the SSL mode for the connection.
	SSLMode string `yaml:"sslmode" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	// SearchPath specifies the schema search path.
	SearchPath     string        `yaml:"search_path"     default:"public"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`

	PoolMaxConns        int32         `yaml:"pool_max_conns"          default:"4"`
	PoolMinConns        int32         `yaml:"pool_min_conns"          default:"1"`
	PoolMaxConnLifetime time.Duration `yaml:"pool_max_conn_lifetime"  default:"1h"`
	PoolMaxConnIdleTime time.Duration `yaml:"pool_max_conn_idle_time" default:"30m"`
}

// URL returns the connection string in postgres:// form. Credentials are
// escaped, so passwords may contain any character.
func (c Config) URL() string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.SearchPath != "" {
		q.Set("search_path", c.SearchPath)
	}
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
