package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through redis cache for raw catalog responses, keyed by
// request path + canonical query string. Losing it only costs a refetch.
type Cache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

func (c *Cache) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := c.client.Get(ctx, cacheKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, path string, body []byte) error {
	// Jitter spreads expirations so a burst of queries does not refetch
	// everything at once.
	ttl := c.baseTTL + time.Duration(rand.Intn(60))*time.Second
	if err := c.client.Set(ctx, cacheKey(path), body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(path string) string {
	return fmt.Sprintf("catalog:%s", path)
}
