package index

import (
	"sync"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/domain"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// Stats describes what the index currently serves.
type Stats struct {
	Lists       int       `json:"total_lists"`
	Items       int       `json:"total_items"`
	LastUpdated time.Time `json:"last_updated"`
}

// MemoryIndex holds the loaded snapshot and the views derived from it.
// Update swaps everything at once; slices handed out are never modified
// afterwards, so callers may keep them without copying.
type MemoryIndex struct {
	mu         sync.RWMutex
	lists      []snapshot.List
	items      []domain.Item // newest first
	timeline   []domain.Day  // newest day first
	lastReload time.Time     // zero until the first Update
	now        func() time.Time
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{now: time.Now}
}

// Update replaces the served snapshot
func (idx *MemoryIndex) Update(s snapshot.Snapshot) Stats {
	lists := s.Clone().Lists
	items := domain.Flatten(s)
	timeline := domain.Timeline(items)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lists = lists
	idx.items = items
	idx.timeline = timeline
	idx.lastReload = idx.now()
	return idx.statsLocked()
}

// Loaded reports whether a snapshot with at least one item is served
func (idx *MemoryIndex) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return !idx.lastReload.IsZero() && len(idx.items) > 0
}

// Items returns all items, newest first
func (idx *MemoryIndex) Items() []domain.Item {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.items
}

// Timeline returns the day groups, newest first
func (idx *MemoryIndex) Timeline() []domain.Day {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.timeline
}

// RandomList returns the list at pick(n), where n is the number of lists.
// ok is false when nothing is loaded.
func (idx *MemoryIndex) RandomList(pick func(n int) int) (snapshot.List, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.lists) == 0 {
		return snapshot.List{}, false
	}
	return idx.lists[pick(len(idx.lists))], true
}

// Count returns the number of items in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.items)
}

// GetLastReload returns the timestamp of the last update
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Stats returns list and item counts plus the last update time
func (idx *MemoryIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.statsLocked()
}

func (idx *MemoryIndex) statsLocked() Stats {
	return Stats{
		Lists:       len(idx.lists),
		Items:       len(idx.items),
		LastUpdated: idx.lastReload,
	}
}
