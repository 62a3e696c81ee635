package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/index"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// SnapshotLoader reads the published snapshot. *store.SnapshotStore
// implements it.
type SnapshotLoader interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
}

// SnapshotReloader keeps the memory index in sync with the published
// snapshot: once at start, then every interval, and on demand.
type SnapshotReloader struct {
	loader   SnapshotLoader
	index    *index.MemoryIndex
	logger   logger.Logger
	interval time.Duration
	mu       sync.Mutex // serializes reloads
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSnapshotReloader creates a new snapshot reloader
func NewSnapshotReloader(
	loader SnapshotLoader,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
) *SnapshotReloader {
	return &SnapshotReloader{
		loader:   loader,
		index:    idx,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start loads the snapshot and begins the periodic reload. A failed first
// load is logged, not returned: the service comes up and reports not ready
// until a later reload succeeds.
func (sr *SnapshotReloader) Start(ctx context.Context) {
	if _, err := sr.Reload(ctx); err != nil {
		sr.logger.Warn("initial snapshot load failed", logger.Error(err))
	}

	if sr.interval <= 0 {
		return
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload snapshot",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the periodic reload. Calling it twice is harmless.
func (sr *SnapshotReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Reload loads the snapshot and swaps it into the index. On failure the
// index keeps serving what it had.
func (sr *SnapshotReloader) Reload(ctx context.Context) (index.Stats, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	sr.logger.Info("reloading published snapshot")

	start := time.Now()
	snap, err := sr.loader.Load(ctx)
	if err != nil {
		return index.Stats{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	stats := sr.index.Update(snap)
	sr.logger.Info("snapshot loaded",
		logger.Int("lists", stats.Lists),
		logger.Int("items", stats.Items),
		logger.Duration("took", time.Since(start)))
	return stats, nil
}
