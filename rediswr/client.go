// Package rediswr builds Redis clients from configuration.
package rediswr

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
)

// New creates a Redis client. Single and cluster deployments share one
// constructor through redis.UniversalClient.
func New(cfg Config) redis.UniversalClient {
	addrs := strings.Split(cfg.Addrs, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:         addrs,
		Username:      cfg.Username,
		Password:      cfg.Password,
		DB:            cfg.DB,
		IsClusterMode: cfg.IsClusterMode,
	})
}

// Connect creates a client and verifies the server answers PING.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	client := New(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"addrs": cfg.Addrs}))
	}
	return client, nil
}
