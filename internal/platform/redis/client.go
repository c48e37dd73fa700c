// Package redis owns the engine's Redis connection, used by the Redis
// visit-ledger backend.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JIATech/SIGVIP-sub002/internal/platform/config"
)

// Client wraps the go-redis client so the rest of the engine does not
// import go-redis directly.
type Client struct {
	*redis.Client
}

// New connects to Redis and verifies the connection with a ping before
// handing it out. An empty URL means Redis is not configured; New then
// returns (nil, nil) and callers treat the nil client as "backend
// absent".
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the connection still answers pings.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
