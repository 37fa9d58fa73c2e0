// Package repository provides data access layer implementations and interfaces for the durable ID store
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisIDSetRepository persists ID sets as JSON-encoded arrays in Redis.
type RedisIDSetRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIDSetRepository creates a Redis-backed ID set repository. The prefix
// namespaces the four store keys (e.g. "onboarding:").
func NewRedisIDSetRepository(client *redis.Client, keyPrefix string) *RedisIDSetRepository {
	return &RedisIDSetRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisIDSetRepository) Get(ctx context.Context, key string) ([]int, error) {
	bs, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read id set %q: %w", key, err)
	}

	var ids []int
	if err := json.Unmarshal(bs, &ids); err != nil {
		return nil, fmt.Errorf("corrupt id set %q: %w", key, err)
	}
	return ids, nil
}

func (r *RedisIDSetRepository) Set(ctx context.Context, key string, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	bs, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode id set %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+key, bs, 0).Err(); err != nil {
		return fmt.Errorf("failed to write id set %q: %w", key, err)
	}
	return nil
}
