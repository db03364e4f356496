package convert

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12*math.Max(1, math.Abs(b))
}

// go test -v --run TestConvertZeroGuard
func TestConvertZeroGuard(t *testing.T) {
	cases := []struct {
		amount, from, to float64
	}{
		{0, 50000, 1},
		{100, 0, 1},
		{100, 50000, 0},
		{0, 0, 0},
		{math.NaN(), 1, 1},
	}
	for _, tc := range cases {
		if got := Convert(tc.amount, tc.from, tc.to); got != 0 {
			t.Errorf("Convert(%v, %v, %v) = %v, want 0", tc.amount, tc.from, tc.to, got)
		}
	}
}

// go test -v --run TestConvertValues
func TestConvertValues(t *testing.T) {
	if got := Convert(100, 50000, 1); got != 0.002 {
		t.Errorf("Convert(100, 50000, 1) = %v, want 0.002", got)
	}
	if got := Convert(1, 1, 1); got != 1 {
		t.Errorf("Convert(1, 1, 1) = %v, want 1", got)
	}
	if got := Convert(10, 2, 3); got != 15 {
		t.Errorf("Convert(10, 2, 3) = %v, want 15", got)
	}
}

// go test -v --run TestBetweenDirections
func TestBetweenDirections(t *testing.T) {
	btc := Crypto(50000)
	eth := Crypto(2500)
	usd := Fiat(1)
	eur := Fiat(0.5)

	cases := []struct {
		name     string
		amount   float64
		from, to Asset
		want     float64
	}{
		{"crypto to fiat", 2, btc, eur, 50000},
		{"fiat to crypto", 100, usd, btc, 0.002},
		{"crypto to crypto", 1, btc, eth, 20},
		{"fiat to fiat", 10, eur, usd, 20},
		{"unpriced crypto", 1, Crypto(0), usd, 0},
	}
	for _, tc := range cases {
		if got := Between(tc.amount, tc.from, tc.to); !almostEqual(got, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

// go test -v --run TestPercentageChange
func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(110, 100); !almostEqual(got, 10) {
		t.Errorf("PercentageChange(110, 100) = %v, want 10", got)
	}
	if got := PercentageChange(50, 100); got != -50 {
		t.Errorf("PercentageChange(50, 100) = %v, want -50", got)
	}
	if got := PercentageChange(5, 0); got != 0 {
		t.Errorf("PercentageChange(5, 0) = %v, want 0", got)
	}
}
