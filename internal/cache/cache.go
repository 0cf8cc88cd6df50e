// Package cache stores generated places, generation locks and rate-limit
// counters in Redis or, when Redis is disabled, in process memory.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/welcometomycity/citycore/internal/config"
)

// ErrLockTimeout is returned when a lock holder does not finish in time
var ErrLockTimeout = errors.New("timeout waiting for lock")

// pollInterval is how often WaitFor checks a held lock
const pollInterval = 100 * time.Millisecond

// Cache is the storage used by the places service and the rate limiter.
// Values are stored as JSON.
type Cache interface {
	// Get decodes the value at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)

	// AcquireLock sets key only if absent. It reports whether the lock was taken.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error

	// Incr bumps a counter that expires window after its first increment
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error

	// Backend names the implementation for health output
	Backend() string
}

// New returns a Redis cache when enabled, otherwise an in-process cache
func New(ctx context.Context, cfg config.RedisConfig) (Cache, error) {
	if !cfg.Enabled {
		return NewLocalCache(), nil
	}
	return NewRedisCache(ctx, cfg)
}

// PlacesKey generates the cache key for a city's generated places.
// The model is part of the key so switching models does not serve stale output.
func PlacesKey(cityID, model string) string {
	data := fmt.Sprintf("%s|%s", strings.ToLower(cityID), model)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("places:%s:%x", strings.ToLower(cityID), hash[:8])
}

// LockKey generates a mutex lock key
func LockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// RateLimitKey generates the counter key for a client in the window starting at windowStart
func RateLimitKey(scope, client string, windowStart int64) string {
	return fmt.Sprintf("rl:%s:%s:%d", scope, client, windowStart)
}

// WaitFor waits for the lock on key to be released and then reads key into dest.
// It reports false if the holder released the lock without storing a value.
func WaitFor(ctx context.Context, c Cache, key string, dest any, maxWait time.Duration) (bool, error) {
	lockKey := LockKey(key)
	deadline := time.Now().Add(maxWait)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		exists, err := c.Exists(ctx, lockKey)
		if err != nil {
			return false, err
		}

		if !exists {
			return c.Get(ctx, key, dest)
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}

	return false, ErrLockTimeout
}
