package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPingTimeout   = 3 * time.Second
	loginFailurePrefix = "login_failures:"
)

// NewRedisClient returns a connected go-redis client from a URL such as redis://localhost:6379/0.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisLoginCounter counts failed logins per identifier in Redis. The counter
// expires one window after the first failure; maxAttempts <= 0 disables it.
type RedisLoginCounter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

func NewRedisLoginCounter(client redis.Cmdable, maxAttempts int, window time.Duration) *RedisLoginCounter {
	return &RedisLoginCounter{client: client, maxAttempts: maxAttempts, window: window}
}

func (c *RedisLoginCounter) Allowed(ctx context.Context, key string) (bool, error) {
	if c.maxAttempts <= 0 {
		return true, nil
	}
	count, err := c.client.Get(ctx, loginFailurePrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return count < c.maxAttempts, nil
}

func (c *RedisLoginCounter) RecordFailure(ctx context.Context, key string) error {
	if c.maxAttempts <= 0 {
		return nil
	}
	redisKey := loginFailurePrefix + key

	count, err := c.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return c.client.Expire(ctx, redisKey, c.window).Err()
	}
	return nil
}

func (c *RedisLoginCounter) Reset(ctx context.Context, key string) error {
	if c.maxAttempts <= 0 {
		return nil
	}
	return c.client.Del(ctx, loginFailurePrefix+key).Err()
}
