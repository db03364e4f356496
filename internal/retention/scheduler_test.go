package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePruner struct {
	cutoffs []time.Time
	err     error
}

func (f *fakePruner) DeleteClicksBefore(_ context.Context, before time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, before)
	return 3, f.err
}

// go test -v --run TestNextMidnight
func TestNextMidnight(t *testing.T) {
	cases := []struct {
		in, want time.Time
	}{
		{time.Date(2024, 5, 1, 13, 45, 0, 0, time.UTC), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := NextMidnight(tc.in); !got.Equal(tc.want) {
			t.Errorf("NextMidnight(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// go test -v --run TestRunOnceCutoff
func TestRunOnceCutoff(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakePruner{}
	m := &MidnightPruner{Store: store, Days: 365, Logger: zap.NewNop(), Now: func() time.Time { return now }}

	m.RunOnce(context.Background())
	store.err = errors.New("db down")
	m.RunOnce(context.Background())

	if len(store.cutoffs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(store.cutoffs))
	}
	if want := time.Date(2023, 5, 2, 12, 0, 0, 0, time.UTC); !store.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.cutoffs[0], want)
	}
}

// go test -v --run TestStartDisabled
func TestStartDisabled(t *testing.T) {
	store := &fakePruner{}
	m := &MidnightPruner{Store: store, Days: 0, Logger: zap.NewNop()}
	m.Start(context.Background())

	time.Sleep(20 * time.Millisecond)
	if len(store.cutoffs) != 0 {
		t.Fatal("disabled pruner must not run")
	}
}
