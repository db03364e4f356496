package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(opts ...Option) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(NewMemoryBackend(), opts...), clock
}

type payload struct {
	Name   string             `json:"name"`
	Price  float64            `json:"price"`
	At     time.Time          `json:"at"`
	Rates  map[string]float64 `json:"rates"`
	Prices []float64          `json:"prices"`
}

// go test -v --run TestGetAfterSet
func TestGetAfterSet(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	in := payload{
		Name:   "bitcoin",
		Price:  50000.5,
		At:     time.Date(2024, 5, 1, 11, 59, 59, 123000000, time.UTC),
		Rates:  map[string]float64{"EUR": 0.92},
		Prices: []float64{1, 2, 3},
	}
	if err := c.Set(ctx, "crypto-bitcoin", in); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var out payload
	if !c.Get(ctx, "crypto-bitcoin", &out) {
		t.Fatal("expected a hit right after Set")
	}
	if out.Name != in.Name || out.Price != in.Price || !out.At.Equal(in.At) || out.Rates["EUR"] != 0.92 || len(out.Prices) != 3 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

// go test -v --run TestGetAfterTTL
func TestGetAfterTTL(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	if err := c.Set(ctx, "exchange-rates", map[string]float64{"EUR": 0.92}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var out map[string]float64
	clock.Advance(DefaultTTL - time.Millisecond)
	if !c.Get(ctx, "exchange-rates", &out) {
		t.Fatal("entry younger than TTL should be served")
	}

	clock.Advance(time.Millisecond)
	if c.Get(ctx, "exchange-rates", &out) {
		t.Fatal("entry exactly TTL old must be treated as absent")
	}

	// Stale entries are not evicted, only ignored.
	if n := c.Len(ctx); n != 1 {
		t.Errorf("expected the stale entry to remain stored, got %d entries", n)
	}
}

// go test -v --run TestGetMissing
func TestGetMissing(t *testing.T) {
	c, _ := newTestCache()
	var out []string
	if c.Get(context.Background(), "nope", &out) {
		t.Fatal("expected miss for unknown key")
	}
}

// go test -v --run TestFetchLoadsOncePerTTL
func TestFetchLoadsOncePerTTL(t *testing.T) {
	c, clock := newTestCache(WithTTL(30 * time.Second))
	ctx := context.Background()

	var calls int
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"bitcoin", "ethereum"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, "cryptos-100-1-usd", load)
		if err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected result %v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 load within TTL, got %d", calls)
	}

	clock.Advance(30 * time.Second)
	if _, err := Fetch(ctx, c, "cryptos-100-1-usd", load); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after TTL, got %d loads", calls)
	}
}

// go test -v --run TestFetchErrorNotCached
func TestFetchErrorNotCached(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()
	boom := errors.New("upstream down")

	var calls int
	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	if _, err := Fetch(ctx, c, "k", load); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	got, err := Fetch(ctx, c, "k", load)
	if err != nil || got != 42 {
		t.Fatalf("expected retry to load 42, got %v, %v", got, err)
	}
}

// go test -v --run TestFetchSingleFlight
func TestFetchSingleFlight(t *testing.T) {
	c, _ := newTestCache(WithSingleFlight(true))
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "done", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(ctx, c, "global-market-data", load)
			if err != nil {
				t.Errorf("Fetch returned error: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile up behind the first load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single in-flight load, got %d", n)
	}
	for i, v := range results {
		if v != "done" {
			t.Errorf("caller %d got %q", i, v)
		}
	}
}
