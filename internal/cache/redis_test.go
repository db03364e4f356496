package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// go test -v --run TestRedisBackend
func TestRedisBackend(t *testing.T) {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	prefix := "cryptoconvert-test:"
	backend := NewRedisBackend(rdb, prefix, time.Minute)
	c := New(backend)

	if err := c.Set(ctx, "exchange-rates", map[string]float64{"EUR": 0.92}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	t.Cleanup(func() { rdb.Del(context.Background(), prefix+"exchange-rates") })

	var out map[string]float64
	if !c.Get(ctx, "exchange-rates", &out) {
		t.Fatal("expected hit from redis backend")
	}
	if out["EUR"] != 0.92 {
		t.Errorf("unexpected payload %v", out)
	}

	if n, err := backend.Len(ctx); err != nil || n < 1 {
		t.Errorf("expected at least one key, got %d (%v)", n, err)
	}
}
