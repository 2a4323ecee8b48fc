package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/index"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

// Aggregator produces a full aggregation pass.
type Aggregator interface {
	Aggregate(ctx context.Context) ([]domain.AggregatedEntry, error)
}

// SnapshotStore persists the applied view for warm starts.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, entries []domain.AggregatedEntry) error
	GetSnapshot(ctx context.Context) ([]domain.AggregatedEntry, error)
}

// EntryRefresher handles periodic and on-demand refreshes of the entry view
type EntryRefresher struct {
	aggregator    Aggregator
	store         SnapshotStore // nil when Redis is disabled
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	stopped       atomic.Bool
	manualTrigger chan struct{}
}

// NewEntryRefresher creates a new entry refresher
func NewEntryRefresher(
	agg Aggregator,
	store SnapshotStore,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *EntryRefresher {
	return &EntryRefresher{
		aggregator:    agg,
		store:         store,
		index:         idx,
		logger:        log.With(logger.Component("refresher")),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first refresh and then refreshes on every tick or trigger.
// A failed first refresh leaves the view empty (or as seeded) and is retried on the next tick.
func (er *EntryRefresher) Start(ctx context.Context) {
	if err := er.Refresh(ctx); err != nil {
		er.logger.Warn("initial refresh failed", logger.Error(err))
	}

	ticker := time.NewTicker(er.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := er.Refresh(ctx); err != nil {
					er.logger.Error("failed to refresh entries", logger.Error(err))
				}
			case <-er.manualTrigger:
				er.logger.Info("manual refresh triggered")
				if err := er.Refresh(ctx); err != nil {
					er.logger.Error("failed to refresh entries", logger.Error(err))
				}
			case <-er.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the refresher; results of passes still running are not applied
func (er *EntryRefresher) Stop() {
	er.stopOnce.Do(func() {
		er.stopped.Store(true)
		close(er.stopCh)
	})
}

// Trigger asks for a refresh without waiting. It reports false when one is already queued.
func (er *EntryRefresher) Trigger() bool {
	select {
	case er.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Refresh runs one aggregation pass and applies it to the index if no newer pass already did
func (er *EntryRefresher) Refresh(ctx context.Context) error {
	gen := er.index.Begin()
	start := time.Now()

	entries, err := er.aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	if er.stopped.Load() {
		er.logger.Debug("refresher stopped, dropping result")
		return nil
	}

	if !er.index.Apply(gen, entries) {
		er.logger.Debug("discarding stale refresh result", logger.Uint64("generation", gen))
		return nil
	}

	er.logger.Info("entries refreshed",
		logger.Int("count", len(entries)),
		logger.Duration("took", time.Since(start)))

	// Update Redis snapshot (best effort)
	if er.store != nil {
		if err := er.store.SaveSnapshot(ctx, entries); err != nil {
			er.logger.Warn("failed to save snapshot to redis", logger.Error(err))
		}
	}
	return nil
}
