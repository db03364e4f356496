package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"cryptoconvert/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "dev",
		Server: config.ServerConfig{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		},
		CoinGecko:     config.CoinGeckoConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		ExchangeRates: config.ExchangeRatesConfig{URL: "http://127.0.0.1:1", Timeout: time.Second},
		Cache:         config.CacheConfig{Backend: "memory", TTL: time.Minute},
		Stream:        config.StreamConfig{Enabled: true, Interval: time.Second, Limit: 10},
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "app.db"),
		},
	}
}

// go test -v --run TestNewWiresRoutes
func TestNewWiresRoutes(t *testing.T) {
	a, err := New(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.close()

	rec := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}

	// upstreams are unreachable: the degrading form answers with an empty table
	rec = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exchange-rates", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("exchange-rates: %d %s", rec.Code, rec.Body.String())
	}
}

// go test -v --run TestUnsupportedCacheBackend
func TestUnsupportedCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "memcached"
	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

// go test -v --run TestRunStopsOnCancel
func TestRunStopsOnCancel(t *testing.T) {
	a, err := New(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
