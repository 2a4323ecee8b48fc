package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/eligibility"
	"github.com/Snehagupta1907/monad-journal/internal/index"
	"github.com/Snehagupta1907/monad-journal/internal/logger"
)

type stubAggregator struct {
	mu      sync.Mutex
	entries []domain.AggregatedEntry
	err     error
	calls   int
}

func (s *stubAggregator) Aggregate(context.Context) ([]domain.AggregatedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.entries, s.err
}

type memSnapshots struct {
	mu      sync.Mutex
	entries []domain.AggregatedEntry
	saves   int
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, e []domain.AggregatedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = e
	m.saves++
	return nil
}

func (m *memSnapshots) GetSnapshot(context.Context) ([]domain.AggregatedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func TestEntryRefresher_Refresh(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex()
	agg := &stubAggregator{entries: []domain.AggregatedEntry{{TokenID: 2}, {TokenID: 1}}}
	snaps := &memSnapshots{}

	er := NewEntryRefresher(agg, snaps, idx, log, time.Hour, make(chan struct{}, 1))
	if err := er.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if idx.Count() != 2 {
		t.Errorf("Expected 2 entries after refresh, got %d", idx.Count())
	}
	if snaps.saves != 1 {
		t.Errorf("Expected snapshot to be saved once, got %d", snaps.saves)
	}
}

func TestEntryRefresher_FailureKeepsView(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex()
	idx.Apply(idx.Begin(), []domain.AggregatedEntry{{TokenID: 1}})

	agg := &stubAggregator{err: errors.New("rpc down")}
	er := NewEntryRefresher(agg, nil, idx, log, time.Hour, make(chan struct{}, 1))

	if err := er.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should fail when aggregation fails")
	}
	if idx.Count() != 1 {
		t.Errorf("Failed refresh should keep the previous view, got %d entries", idx.Count())
	}
}

func TestEntryRefresher_StopDropsResults(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex()
	agg := &stubAggregator{entries: []domain.AggregatedEntry{{TokenID: 1}}}

	er := NewEntryRefresher(agg, nil, idx, log, time.Hour, make(chan struct{}, 1))
	er.Stop()
	er.Stop()

	if err := er.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("Stopped refresher should not apply results, got %d entries", idx.Count())
	}
}

func TestEntryRefresher_Trigger(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex()
	agg := &stubAggregator{entries: []domain.AggregatedEntry{{TokenID: 1}}}

	er := NewEntryRefresher(agg, nil, idx, log, time.Hour, make(chan struct{}, 1))
	if !er.Trigger() {
		t.Fatal("first Trigger should be queued")
	}
	if er.Trigger() {
		t.Error("second Trigger should report a refresh already queued")
	}
}

func TestRedisSyncer_Sync(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex()
	snaps := &memSnapshots{entries: []domain.AggregatedEntry{{TokenID: 3}}}

	if err := NewRedisSyncer(snaps, idx, log).Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, ok := idx.GetEntry(3); !ok {
		t.Error("Sync should seed the index from the snapshot")
	}
}

type stubGuard struct {
	snap    eligibility.Snapshot
	rechecks int
}

func (g *stubGuard) Recheck(context.Context) eligibility.State {
	g.rechecks++
	return g.snap.State
}

func (g *stubGuard) Snapshot() eligibility.Snapshot { return g.snap }

func TestEligibilityWatcher_Poll(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	tests := []struct {
		name string
		snap eligibility.Snapshot
		now  time.Time
		want bool
	}{
		{name: "same day blocked", snap: eligibility.Snapshot{State: eligibility.Blocked}, now: day1, want: false},
		{name: "day rollover", snap: eligibility.Snapshot{State: eligibility.Blocked}, now: day2, want: true},
		{name: "last check failed", snap: eligibility.Snapshot{State: eligibility.Blocked, Error: "rpc down"}, now: day1, want: true},
		{name: "disconnected", snap: eligibility.Snapshot{State: eligibility.Disconnected}, now: day2, want: false},
		{name: "mint in flight", snap: eligibility.Snapshot{State: eligibility.Eligible, Busy: true}, now: day2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &stubGuard{snap: tt.snap}
			ew := NewEligibilityWatcher(g, logger.New("error", false), time.Minute)
			ew.lastDay = utcDay(day1)
			ew.now = func() time.Time { return tt.now }

			if got := ew.Poll(context.Background()); got != tt.want {
				t.Errorf("Poll() = %v, want %v", got, tt.want)
			}
			if tt.want && g.rechecks != 1 {
				t.Errorf("expected one recheck, got %d", g.rechecks)
			}
		})
	}
}
