package scheduler

import (
	"context"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

// Guard is the eligibility surface the watcher drives.
type Guard interface {
	Recheck(ctx context.Context) eligibility.State
	Snapshot() eligibility.Snapshot
}

// EligibilityWatcher re-checks the guard when the UTC day rolls over or the last check failed
type EligibilityWatcher struct {
	guard    Guard
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	lastDay  string
	stopCh   chan struct{}
}

// NewEligibilityWatcher creates a new eligibility watcher
func NewEligibilityWatcher(guard Guard, log logger.Logger, interval time.Duration) *EligibilityWatcher {
	return &EligibilityWatcher{
		guard:    guard,
		logger:   log.With(logger.Component("eligibility-watch")),
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start records the current day and polls on every tick
func (ew *EligibilityWatcher) Start(ctx context.Context) {
	ew.lastDay = utcDay(ew.now())

	ticker := time.NewTicker(ew.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ew.Poll(ctx)
			case <-ew.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the watcher
func (ew *EligibilityWatcher) Stop() {
	close(ew.stopCh)
}

// Poll re-checks when needed and reports whether a check was issued
func (ew *EligibilityWatcher) Poll(ctx context.Context) bool {
	today := utcDay(ew.now())
	snap := ew.guard.Snapshot()

	switch {
	case snap.State == eligibility.Disconnected, snap.Busy:
		ew.lastDay = today
		return false
	case today != ew.lastDay:
		ew.logger.Info("utc day rolled over, re-checking eligibility",
			logger.String("day", today))
	case snap.Error != "":
		ew.logger.Debug("retrying failed eligibility check")
	default:
		return false
	}

	ew.lastDay = today
	state := ew.guard.Recheck(ctx)
	ew.logger.Debug("eligibility re-checked", logger.String("state", string(state)))
	return true
}

func utcDay(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
