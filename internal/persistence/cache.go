package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewCache caches rendered detail views keyed by entity id. Every ticket
// mutation must invalidate the ticket's entry.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

const ticketDetailPrefix = "ticket:detail:"

// TicketDetailKey builds the cache key for a ticket's detail view.
func TicketDetailKey(ticketID string) string {
	return ticketDetailPrefix + ticketID
}

type redisViewCache struct {
	client *redis.Client
}

// NewViewCache builds a Redis-backed ViewCache.
func NewViewCache(r *Redis) ViewCache {
	if r == nil {
		return &redisViewCache{client: nil}
	}
	return &redisViewCache{client: r.Client}
}

func (c *redisViewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (c *redisViewCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *redisViewCache) Invalidate(ctx context.Context, key string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
