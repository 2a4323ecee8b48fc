package index

import (
	"sync"
	"testing"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

func entries(ids ...uint64) []domain.AggregatedEntry {
	out := make([]domain.AggregatedEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.AggregatedEntry{TokenID: id})
	}
	return out
}

func TestNewMemoryIndex(t *testing.T) {
	idx := NewMemoryIndex()
	if idx.Count() != 0 {
		t.Errorf("NewMemoryIndex() should start empty, got %d", idx.Count())
	}
	if !idx.GetLastReload().IsZero() {
		t.Error("NewMemoryIndex() should have no reload time")
	}
}

func TestApplyReplaces(t *testing.T) {
	idx := NewMemoryIndex()

	if !idx.Apply(idx.Begin(), entries(1)) {
		t.Fatal("Apply() first generation should apply")
	}
	if !idx.Apply(idx.Begin(), entries(3, 2)) {
		t.Fatal("Apply() newer generation should apply")
	}

	got := idx.GetAllEntries()
	if len(got) != 2 || got[0].TokenID != 3 || got[1].TokenID != 2 {
		t.Errorf("GetAllEntries() = %+v, want [3 2]", got)
	}
	if _, ok := idx.GetEntry(1); ok {
		t.Error("GetEntry(1) should be gone after replace")
	}
	if idx.GetLastReload().IsZero() {
		t.Error("Apply() should set reload time")
	}
}

func TestApplyDropsStaleGeneration(t *testing.T) {
	idx := NewMemoryIndex()

	older := idx.Begin()
	newer := idx.Begin()

	// The newer refresh finishes first.
	if !idx.Apply(newer, entries(2, 1)) {
		t.Fatal("Apply(newer) should apply")
	}
	if idx.Apply(older, entries(1)) {
		t.Error("Apply(older) should be discarded")
	}
	if idx.Count() != 2 {
		t.Errorf("Count() = %d, want 2", idx.Count())
	}
}

func TestSeedOnlyFillsEmptyIndex(t *testing.T) {
	idx := NewMemoryIndex()

	if !idx.Seed(entries(5)) {
		t.Fatal("Seed() on empty index should apply")
	}
	if e, ok := idx.GetEntry(5); !ok || e.TokenID != 5 {
		t.Errorf("GetEntry(5) = %+v, %v", e, ok)
	}

	idx.Apply(idx.Begin(), entries(7))
	if idx.Seed(entries(9)) {
		t.Error("Seed() after a refresh should be ignored")
	}
}

func TestGetAllEntriesReturnsCopy(t *testing.T) {
	idx := NewMemoryIndex()
	idx.Apply(idx.Begin(), entries(1))

	got := idx.GetAllEntries()
	got[0].TokenID = 42

	if e, _ := idx.GetEntry(1); e.TokenID != 1 {
		t.Error("mutating returned slice changed the index")
	}
	if idx.GetAllEntries()[0].TokenID != 1 {
		t.Error("mutating returned slice changed the view")
	}
}

func TestConcurrentAccess(t *testing.T) {
	idx := NewMemoryIndex()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n uint64) {
			defer wg.Done()
			idx.Apply(idx.Begin(), entries(n))
		}(uint64(i + 1))
		go func() {
			defer wg.Done()
			_ = idx.GetAllEntries()
			_ = idx.Count()
		}()
	}
	wg.Wait()

	if idx.Count() != 1 {
		t.Errorf("Count() = %d, want 1", idx.Count())
	}
}
