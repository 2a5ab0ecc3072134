package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const jwtPrefix = "jwt_blacklist:"

// WriteJWTToBlacklist добавляет токен в blacklist до истечения его срока
func (c *Client) WriteJWTToBlacklist(ctx context.Context, jwtStr string, ttl time.Duration) error {
	return c.rdb.Set(ctx, jwtPrefix+jwtStr, true, ttl).Err()
}

// CheckJWTInBlacklist возвращает nil, если токен находится в blacklist
func (c *Client) CheckJWTInBlacklist(ctx context.Context, jwtStr string) error {
	err := c.rdb.Get(ctx, jwtPrefix+jwtStr).Err()
	if errors.Is(err, redis.Nil) {
		return errors.New("jwt not in blacklist")
	}
	return err
}
