package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisConfig holds configuration for the Redis connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore is a Redis-backed Store. Single-flight applies per process:
// concurrent local callers share one computation, and the Redis write is
// an idempotent upsert keyed by content, so a second gateway instance
// racing the same key converges on the same value.
type RedisStore struct {
	rdb   *redis.Client
	ttls  TTLs
	group singleflight.Group
}

// NewRedisStore creates a Redis store with connection validation
func NewRedisStore(cfg RedisConfig, ttls TTLs) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttls: ttls}, nil
}

// Get returns the value for key if present
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return val, true, nil
}

// Set stores value under key with the class TTL
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, class TTLClass) error {
	if err := r.rdb.Set(ctx, key, value, r.ttls.For(class)).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// GetOrCompute returns the cached value or computes it, invoking compute
// at most once per key across concurrent local callers.
func (r *RedisStore) GetOrCompute(ctx context.Context, key string, class TTLClass, compute ComputeFunc) ([]byte, error) {
	if v, ok, err := r.Get(ctx, key); err == nil && ok {
		return v, nil
	}
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		if v, ok, err := r.Get(ctx, key); err == nil && ok {
			return v, nil
		}
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.Set(ctx, key, value, class); err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// Ping checks if Redis is reachable
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
