package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ViewCounter tracks how often a request detail page was opened.
type ViewCounter interface {
	Increment(ctx context.Context, requestID string) (int64, error)
	Get(ctx context.Context, requestID string) (int64, error)
}

type redisViewCounter struct {
	client *redis.Client
}

// NewViewCounter returns a Redis-backed counter.
func NewViewCounter(client *redis.Client) ViewCounter {
	return &redisViewCounter{client: client}
}

func viewKey(requestID string) string {
	return fmt.Sprintf("request:%s:views", requestID)
}

func (c *redisViewCounter) Increment(ctx context.Context, requestID string) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	return c.client.Incr(ctx, viewKey(requestID)).Result()
}

func (c *redisViewCounter) Get(ctx context.Context, requestID string) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	count, err := c.client.Get(ctx, viewKey(requestID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
