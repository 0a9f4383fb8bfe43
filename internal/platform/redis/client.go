// Package redis opens the shared go-redis client used by the epoch oracle.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payout/internal/platform/config"
)

const healthTimeout = 2 * time.Second

// Client embeds the go-redis client so it can be handed to anything that
// takes a redis.Cmdable.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings once. It returns nil, nil when no URL is
// configured so callers can fall back to the in-process oracle.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Options translates cfg into go-redis options. Zero values keep the go-redis
// defaults.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	for dst, v := range map[*time.Duration]time.Duration{
		&opts.DialTimeout:  cfg.DialTimeout,
		&opts.ReadTimeout:  cfg.ReadTimeout,
		&opts.WriteTimeout: cfg.WriteTimeout,
	} {
		if v > 0 {
			*dst = v
		}
	}
	return opts, nil
}

// Health pings with its own deadline; a stalled server must not hold the
// health endpoint open.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		stats := c.PoolStats()
		return fmt.Errorf("redis unhealthy (conns total=%d idle=%d): %w", stats.TotalConns, stats.IdleConns, err)
	}
	return nil
}
