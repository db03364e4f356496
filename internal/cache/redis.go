package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend shares entries between replicas. Keys expire after expiry so
// Redis cleans up on its own; freshness is still judged by Entry.FetchedAt.
type RedisBackend struct {
	client *redis.Client
	prefix string
	expiry time.Duration
}

func NewRedisBackend(client *redis.Client, prefix string, expiry time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
		expiry: expiry,
	}
}

func (r *RedisBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e Entry
	if err := decMode.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	return e, true, nil
}

func (r *RedisBackend) Store(ctx context.Context, key string, e Entry) error {
	raw, err := encMode.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.expiry).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Len counts the keys under the backend's prefix.
func (r *RedisBackend) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 500).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
