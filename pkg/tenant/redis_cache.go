package tenant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces resolution entries in a shared Redis instance.
const redisKeyPrefix = "tenant:resolve:"

// negativeSentinel marks a cached "no such tenant" result.
const negativeSentinel = "null"

// redisCache is a Redis-backed Cache for deployments running several API
// instances, so a resolution performed by one instance is visible to the
// rest. The client lifecycle is owned by the caller.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps client as a resolution cache.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		// redis.Nil and transport errors are both treated as a miss;
		// the cache must never fail a resolution.
		return nil, false
	}

	if raw == negativeSentinel {
		return nil, true
	}

	var t Tenant
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, false
	}

	return &t, true
}

func (c *redisCache) Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) {
	payload := negativeSentinel
	if tenant != nil {
		raw, err := json.Marshal(tenant)
		if err != nil {
			return
		}
		payload = string(raw)
	}

	_ = c.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) {
	_ = c.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (c *redisCache) Purge(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}

func (c *redisCache) Close() error { return nil }
