package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobscout:geocode:"

// RedisStore shares geocode results between processes.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get returns a cached place. ok is false when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (Place, bool, error) {
	b, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Place{}, false, nil
	}
	if err != nil {
		return Place{}, false, fmt.Errorf("redis get: %w", err)
	}
	var p Place
	if err := json.Unmarshal(b, &p); err != nil {
		return Place{}, false, fmt.Errorf("decode cached place: %w", err)
	}
	return p, true, nil
}

// Set stores a place. A zero ttl stores without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, p Place, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode place: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
