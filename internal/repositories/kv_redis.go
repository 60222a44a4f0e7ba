package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

const redisKeyPrefix = "fdg:storage"

// RedisKVRepository is a browser-scoped key-value store backed by Redis.
// Each namespace plays the role of one browser's local storage.
type RedisKVRepository struct {
	client    *redis.Client
	exp       time.Duration // zero keeps keys until deleted
	namespace string
}

// NewRedisKVRepository creates a repository with the given expiration for written keys.
func NewRedisKVRepository(client *redis.Client, expiration time.Duration) *RedisKVRepository {
	return &RedisKVRepository{
		client: client,
		exp:    expiration,
	}
}

// Namespace returns a view of the repository whose keys are isolated under ns.
func (r *RedisKVRepository) Namespace(ns string) *RedisKVRepository {
	return &RedisKVRepository{
		client:    r.client,
		exp:       r.exp,
		namespace: ns,
	}
}

func (r *RedisKVRepository) key(key string) string {
	if r.namespace == "" {
		return fmt.Sprintf("%s:%s", redisKeyPrefix, key)
	}
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, r.namespace, key)
}

// Set stores value under key, replacing any previous value.
func (r *RedisKVRepository) Set(ctx context.Context, key, value string) error {
	k := r.key(key)
	err := r.client.Set(ctx, k, value, r.exp).Err()

	logger.Log.Infow("redis set",
		"key", k,
		"result", "set",
		"error", err,
	)

	return err
}

// Get returns the value stored under key or ErrKeyNotFound.
func (r *RedisKVRepository) Get(ctx context.Context, key string) (string, error) {
	k := r.key(key)
	val, err := r.client.Get(ctx, k).Result()

	logger.Log.Infow("redis get",
		"key", k,
		"found", err == nil,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (r *RedisKVRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, r.key(key))
	}
	removed, err := r.client.Del(ctx, full...).Result()

	logger.Log.Infow("redis delete",
		"keys", full,
		"result", removed,
		"error", err,
	)

	return err
}
