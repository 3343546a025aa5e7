package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/redis/go-redis/v9"
)

// DefaultStatusKeyPrefix namespaces status entries in Redis
const DefaultStatusKeyPrefix = "invoicelock:status:"

// RedisStatusCache stores status results in Redis so every replica sees the
// same answers and an unlock on one replica invalidates all of them
type RedisStatusCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStatusCache creates a Redis-backed status cache
func NewRedisStatusCache(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStatusCache {
	if keyPrefix == "" {
		keyPrefix = DefaultStatusKeyPrefix
	}
	return &RedisStatusCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns the cached result of customer
func (c *RedisStatusCache) Get(ctx context.Context, customer string) (*customerlock.StatusResult, bool, error) {
	data, err := c.client.Get(ctx, c.key(customer)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result customerlock.StatusResult
	if err := json.Unmarshal(data, &result); err != nil {
		// a corrupt entry is a miss; the next Set overwrites it
		return nil, false, nil
	}
	return &result, true, nil
}

// Set caches result for the configured TTL
func (c *RedisStatusCache) Set(ctx context.Context, customer string, result *customerlock.StatusResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := c.client.Set(ctx, c.key(customer), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the entries of customers
func (c *RedisStatusCache) Invalidate(ctx context.Context, customers ...string) error {
	if len(customers) == 0 {
		return nil
	}
	keys := make([]string, len(customers))
	for i, customer := range customers {
		keys[i] = c.key(customer)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *RedisStatusCache) key(customer string) string {
	return c.keyPrefix + customer
}

var _ customerlock.StatusCache = (*RedisStatusCache)(nil)
