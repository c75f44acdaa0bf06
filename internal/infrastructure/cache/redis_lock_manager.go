package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fdccore/backend/internal/domain/shared"
)

// RedisLockManager implements LockManager using Redis SETNX keys.
// Suitable for distributed deployments where multiple instances may
// attempt to freeze the same workpaper concurrently.
type RedisLockManager struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLockManager creates a lock manager over an existing Redis client
func NewRedisLockManager(client *redis.Client, keyPrefix string) *RedisLockManager {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisLockManager{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire attempts to take the lock, returning false if another holder owns it.
// The TTL bounds how long a crashed holder can block others.
func (m *RedisLockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := m.client.SetNX(ctx, m.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return acquired, nil
}

// Release frees the lock. Releasing a lock that already expired is not an error.
func (m *RedisLockManager) Release(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

var _ shared.LockManager = (*RedisLockManager)(nil)
