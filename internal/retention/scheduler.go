// Package retention prunes old affiliate clicks once a day.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ClickPruner interface {
	DeleteClicksBefore(ctx context.Context, before time.Time) (int64, error)
}

// MidnightPruner deletes clicks older than Days, once at startup and then at
// every UTC midnight.
type MidnightPruner struct {
	Store  ClickPruner
	Days   int
	Logger *zap.Logger
	Now    func() time.Time
}

func (m *MidnightPruner) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

// NextMidnight returns the first UTC midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// Start runs the pruner in its own goroutine until ctx is cancelled. A zero or
// negative Days disables it.
func (m *MidnightPruner) Start(ctx context.Context) {
	if m.Days <= 0 {
		m.Logger.Info("click retention disabled")
		return
	}
	go m.loop(ctx)
}

func (m *MidnightPruner) loop(ctx context.Context) {
	m.RunOnce(ctx)

	timer := time.NewTimer(time.Until(NextMidnight(m.now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.RunOnce(ctx)
			timer.Reset(time.Until(NextMidnight(m.now())))
		}
	}
}

// RunOnce deletes every click older than the retention window.
func (m *MidnightPruner) RunOnce(ctx context.Context) {
	cutoff := m.now().AddDate(0, 0, -m.Days)
	n, err := m.Store.DeleteClicksBefore(ctx, cutoff)
	if err != nil {
		m.Logger.Warn("click retention failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	m.Logger.Info("pruned affiliate clicks", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
}
