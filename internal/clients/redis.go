// Package clients provides wrappers for external service clients.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const welcomeSentPrefix = "welcome_sent:"

// RedisClient wraps the Redis client with application-specific operations.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a new Redis client from the connection URL.
// ttl bounds how long a welcome_sent marker lives.
func NewRedisClient(url string, ttl time.Duration) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisClient{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Name identifies the dependency in readiness output.
func (c *RedisClient) Name() string {
	return "redis"
}

// Ping checks connectivity to Redis.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// MarkWelcomeSentIfNew atomically sets the welcome_sent marker for a user.
// Returns true if the marker was created by this call.
func (c *RedisClient) MarkWelcomeSentIfNew(ctx context.Context, userID string) (bool, error) {
	value := time.Now().UTC().Format(time.RFC3339)
	ok, err := c.client.SetNX(ctx, welcomeSentPrefix+userID, value, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set welcome_sent key: %w", err)
	}
	return ok, nil
}

// ReleaseWelcomeSent removes the marker so a retried confirmation can send again.
func (c *RedisClient) ReleaseWelcomeSent(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, welcomeSentPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete welcome_sent key: %w", err)
	}
	return nil
}
