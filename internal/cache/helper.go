package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest. A nil client, a missing
// key, or a corrupted entry all report a miss; a corrupted entry is also
// dropped so the next write starts clean.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and writes it under key with the given TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside is the read-through path: serve from Redis when possible, otherwise
// run fetch (which must write into dest) and cache what it produced. Cache
// trouble never fails the read, only fetch errors do.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if found, err := GetJSON(ctx, key, dest); err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
