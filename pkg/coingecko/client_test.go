package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, WithUserAgent("CryptoConverter/1.0"), WithAPIKey("demo"))
}

// go test -v --run TestMarketsQuery
func TestMarketsQuery(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"vs_currency":             "eur",
			"order":                   "market_cap_desc",
			"per_page":                "50",
			"page":                    "2",
			"sparkline":               "false",
			"price_change_percentage": "24h",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s: got %q want %q", k, got, v)
			}
		}
		if q.Has("ids") {
			t.Error("ids should be omitted when empty")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		if r.Header.Get("User-Agent") != "CryptoConverter/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("x-cg-demo-api-key") != "demo" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":50000,"max_supply":null,"market_cap_rank":1}]`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coins, err := client.Markets(ctx, MarketsParams{VsCurrency: "eur", PerPage: 50, Page: 2, PriceChangePercentage: "24h"})
	if err != nil {
		t.Fatalf("Markets returned error: %v", err)
	}
	if len(coins) != 1 || coins[0].ID != "bitcoin" || coins[0].CurrentPrice != 50000 {
		t.Fatalf("unexpected coins: %+v", coins)
	}
	if coins[0].MaxSupply != 0 {
		t.Errorf("null max_supply should decode to 0, got %v", coins[0].MaxSupply)
	}
}

// go test -v --run TestStatusError
func TestStatusError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.Global(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("unexpected status %d", statusErr.StatusCode)
	}
}

// go test -v --run TestDecodeError
func TestDecodeError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.Search(context.Background(), "bit")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

// go test -v --run TestMarketChartInterval
func TestMarketChartInterval(t *testing.T) {
	var gotInterval string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/market_chart" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(`{"prices":[[1700000000000,1]],"market_caps":[],"total_volumes":[]}`))
	})

	cases := []struct {
		days int
		want string
	}{
		{1, "hourly"},
		{30, "hourly"},
		{31, "daily"},
		{365, "daily"},
	}
	for _, tc := range cases {
		if _, err := client.MarketChart(context.Background(), "bitcoin", "usd", tc.days); err != nil {
			t.Fatalf("MarketChart(%d) returned error: %v", tc.days, err)
		}
		if gotInterval != tc.want {
			t.Errorf("days=%d: got interval %q want %q", tc.days, gotInterval, tc.want)
		}
	}
}
