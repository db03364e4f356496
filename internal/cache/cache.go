// Package cache is the time-to-live cache in front of the market-data
// providers. Entries are encoded with CBOR so the same format serves the
// process-local and the Redis backends.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the maximum age of an entry that may still be served.
const DefaultTTL = 60 * time.Second

// Entry is a stored payload together with the time it was fetched.
type Entry struct {
	Data      []byte    `cbor:"1,keyasint"`
	FetchedAt time.Time `cbor:"2,keyasint"`
}

// Backend stores entries. It never decides freshness; Cache does.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Store(ctx context.Context, key string, e Entry) error
}

type Cache struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	singleFlight bool
	group        singleflight.Group
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// RFC3339Nano keeps sub-second timestamps intact across a round trip.
	if encMode, err = (cbor.EncOptions{Time: cbor.TimeRFC3339Nano}).EncMode(); err != nil {
		panic(fmt.Sprintf("cache: cbor encoder: %v", err))
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(fmt.Sprintf("cache: cbor decoder: %v", err))
	}
}

// Sizer is implemented by backends that can report how many entries they hold.
type Sizer interface {
	Len(ctx context.Context) (int, error)
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithSingleFlight collapses concurrent loads of the same key into one call.
// Off by default: overlapping loads race and the last write wins.
func WithSingleFlight(enabled bool) Option {
	return func(c *Cache) { c.singleFlight = enabled }
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Len reports the backend's entry count, or -1 when it cannot tell.
func (c *Cache) Len(ctx context.Context) int {
	s, ok := c.backend.(Sizer)
	if !ok {
		return -1
	}
	n, err := s.Len(ctx)
	if err != nil {
		c.logger.Warn("cache size unavailable", zap.Error(err))
		return -1
	}
	return n
}

// Get decodes the entry for key into dst. It reports false when the entry is
// missing, unreadable, or at least TTL old; stale entries are left in place.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	e, ok, err := c.backend.Load(ctx, key)
	if err != nil {
		c.logger.Warn("cache load failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || c.now().Sub(e.FetchedAt) >= c.ttl {
		return false
	}
	if err := decMode.Unmarshal(e.Data, dst); err != nil {
		c.logger.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set overwrites the entry for key, stamping it with the current time.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	if err := c.backend.Store(ctx, key, Entry{Data: data, FetchedAt: c.now()}); err != nil {
		return fmt.Errorf("store cache entry %q: %w", key, err)
	}
	return nil
}

// Fetch returns the live entry for key, or calls load and caches its result.
// Errors from load are returned as-is and nothing is cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c.Get(ctx, key, &out) {
		return out, nil
	}

	if !c.singleFlight {
		return loadAndStore(ctx, c, key, load)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return loadAndStore(ctx, c, key, load)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func loadAndStore[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
