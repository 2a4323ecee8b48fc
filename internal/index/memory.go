package index

import (
	"sync"
	"time"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
	"github.com/Snehagupta1907/monad-journal/internal/metrics"
)

// MemoryIndex holds the last aggregated view of journal entries.
// A refresh reserves a generation with Begin and publishes with Apply; results of a
// refresh that was overtaken by a newer one are dropped.
type MemoryIndex struct {
	mu         sync.RWMutex
	entries    []domain.AggregatedEntry          // newest first
	byToken    map[uint64]domain.AggregatedEntry // TokenID -> entry
	issued     uint64                            // last generation handed out
	applied    uint64                            // generation currently shown
	lastReload time.Time
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byToken: make(map[uint64]domain.AggregatedEntry),
	}
}

// Begin reserves a generation for a refresh about to start
func (idx *MemoryIndex) Begin() uint64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.issued++
	return idx.issued
}

// Apply replaces the view with entries if gen is newer than what is shown.
// It reports whether the entries were applied.
func (idx *MemoryIndex) Apply(gen uint64, entries []domain.AggregatedEntry) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if gen <= idx.applied {
		metrics.StaleViews.Inc()
		return false
	}
	idx.replaceLocked(entries)
	idx.applied = gen
	idx.lastReload = time.Now()
	return true
}

// Seed fills an index that no refresh has populated yet, e.g. from a cached snapshot.
func (idx *MemoryIndex) Seed(entries []domain.AggregatedEntry) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.applied > 0 || len(idx.entries) > 0 {
		return false
	}
	idx.replaceLocked(entries)
	return true
}

func (idx *MemoryIndex) replaceLocked(entries []domain.AggregatedEntry) {
	idx.entries = make([]domain.AggregatedEntry, len(entries))
	copy(idx.entries, entries)
	idx.byToken = make(map[uint64]domain.AggregatedEntry, len(entries))
	for _, e := range entries {
		idx.byToken[e.TokenID] = e
	}
}

// GetEntry retrieves an entry by token id
func (idx *MemoryIndex) GetEntry(id uint64) (domain.AggregatedEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.byToken[id]
	return e, ok
}

// GetAllEntries returns a copy of the view, newest first
func (idx *MemoryIndex) GetAllEntries() []domain.AggregatedEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.AggregatedEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Count returns the number of entries in the view
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}

// GetLastReload returns when a refresh was last applied
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
