package shared

import (
	"context"
	"time"
)

// LockManager provides short-lived exclusive locks keyed by string.
// Acquire returns false when another holder has the key.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
