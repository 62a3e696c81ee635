package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

const (
	// DefaultSweepThreshold is the age after which a scratch clone counts as abandoned
	DefaultSweepThreshold = 24 * time.Hour
)

// CloneSweeper deletes scratch clones left behind by crashed crawls. Clones
// of a live crawl are younger than the threshold and are left alone.
type CloneSweeper struct {
	dir       string
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewCloneSweeper watches dir (empty means os.TempDir()).
func NewCloneSweeper(
	dir string,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *CloneSweeper {
	if dir == "" {
		dir = os.TempDir()
	}
	if threshold == 0 {
		threshold = DefaultSweepThreshold
	}

	return &CloneSweeper{
		dir:       dir,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start sweeps once, then every interval.
func (cs *CloneSweeper) Start(ctx context.Context) {
	if _, err := cs.Sweep(); err != nil {
		cs.logger.Warn("initial clone sweep failed",
			logger.Error(err))
	}

	if cs.interval <= 0 {
		return
	}

	ticker := time.NewTicker(cs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := cs.Sweep(); err != nil {
					cs.logger.Error("clone sweep failed",
						logger.Error(err))
				}
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper
func (cs *CloneSweeper) Stop() {
	close(cs.stopCh)
}

// Sweep removes abandoned scratch clones and returns how many it removed.
// A directory that cannot be removed is logged and skipped.
func (cs *CloneSweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(cs.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", cs.dir, err)
	}

	now := cs.now()
	deleted := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), history.ScratchPrefix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		age := now.Sub(info.ModTime())
		if age < cs.threshold {
			continue
		}

		path := filepath.Join(cs.dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			cs.logger.Warn("failed to remove abandoned clone",
				logger.String("dir", path),
				logger.Error(err))
			continue
		}

		cs.logger.Info("removed abandoned clone",
			logger.String("dir", path),
			logger.String("age", age.Round(time.Second).String()))
		deleted++
	}

	if deleted > 0 {
		cs.logger.Info("clone sweep completed", logger.Int("deleted", deleted))
	} else {
		cs.logger.Debug("no abandoned clones")
	}
	return deleted, nil
}
