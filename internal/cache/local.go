package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache is an in-process Cache for single-instance deployments and tests
type LocalCache struct {
	store *gocache.Cache
}

// NewLocalCache creates an in-process cache with periodic cleanup of expired entries
func NewLocalCache() *LocalCache {
	return &LocalCache{store: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (l *LocalCache) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := l.store.Get(key)
	if !ok {
		return false, nil
	}

	data, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cached value at %s is not JSON", key)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

func (l *LocalCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	l.store.Set(key, data, expiration(ttl))
	return nil
}

func (l *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := l.store.Get(key)
	return ok, nil
}

func (l *LocalCache) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	// Add fails when the key is already present and unexpired
	if err := l.store.Add(key, []byte("1"), expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *LocalCache) ReleaseLock(_ context.Context, key string) error {
	l.store.Delete(key)
	return nil
}

func (l *LocalCache) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	// Add is a no-op for an open window
	_ = l.store.Add(key, int64(0), expiration(window))
	return l.store.IncrementInt64(key, 1)
}

func (l *LocalCache) Ping(context.Context) error {
	return nil
}

func (l *LocalCache) Close() error {
	l.store.Flush()
	return nil
}

func (l *LocalCache) Backend() string {
	return "memory"
}

// expiration maps a non-positive ttl to no expiry
func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
