package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	pkgerrors "netgraph-backend/pkg/errors"
)

// RedisCache backs the graph cache with Redis for multi-instance
// deployments. A cache failure is never fatal to the caller: Get reports
// a miss and Set/Delete return errors the repository layer only logs.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

var _ ports.GraphCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed cache and verifies connectivity.
func NewRedisCache(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, pkgerrors.NewUnavailableError("redis unreachable").WithCause(err)
	}
	return &RedisCache{client: client, logger: logger}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.NewUnavailableError("redis get failed").WithCause(err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return pkgerrors.NewUnavailableError("redis set failed").WithCause(err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return pkgerrors.NewUnavailableError("redis del failed").WithCause(err)
	}
	return nil
}

// DeletePrefix removes all keys sharing the prefix, scanning in batches so
// large invalidations never block the server.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return pkgerrors.NewUnavailableError("redis del failed").WithCause(err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return pkgerrors.NewUnavailableError("redis scan failed").WithCause(err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return pkgerrors.NewUnavailableError("redis del failed").WithCause(err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
