package redis

import (
	"context"
	"fmt"

	"autotrade/internal/app/config"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	cfg config.RedisConfig
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot ping redis: %w", err)
	}

	return &Client{cfg: cfg, rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
