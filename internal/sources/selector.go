package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// Mode tells how a repository list was obtained.
type Mode string

const (
	ModeDiscovery Mode = "discovery"
	ModeReuse     Mode = "reuse"
	ModeFallback  Mode = "reuse-fallback-discovery"
)

// SnapshotLoader reads the last published snapshot. *store.SnapshotStore
// implements it.
type SnapshotLoader interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
}

// RepositoryDiscoverer finds repositories from scratch.
type RepositoryDiscoverer interface {
	Discover(ctx context.Context) ([]Repository, error)
}

// Selector picks between fresh discovery and reusing the published lists.
type Selector struct {
	discoverer   RepositoryDiscoverer
	snapshots    SnapshotLoader
	seed         *SeedLoader // nil when no seed file is configured
	discoveryDay time.Weekday
	now          func() time.Time
	log          logger.Logger
}

func NewSelector(discoverer RepositoryDiscoverer, snapshots SnapshotLoader, seed *SeedLoader, discoveryDay time.Weekday, log logger.Logger) *Selector {
	return &Selector{
		discoverer:   discoverer,
		snapshots:    snapshots,
		seed:         seed,
		discoveryDay: discoveryDay,
		now:          time.Now,
		log:          log,
	}
}

// Select runs discovery when forced or on the discovery weekday, otherwise
// reuses the published lists and falls back to discovery if they cannot be
// read. Seed repositories are appended last.
func (s *Selector) Select(ctx context.Context, forceDiscovery bool) ([]Repository, Mode, error) {
	var (
		repos []Repository
		mode  Mode
		err   error
	)

	if forceDiscovery || s.now().Weekday() == s.discoveryDay {
		s.log.Info("running repository discovery", logger.Bool("forced", forceDiscovery))
		mode = ModeDiscovery
		repos, err = s.discoverer.Discover(ctx)
	} else {
		mode = ModeReuse
		repos, err = s.reuse(ctx)
		if err != nil {
			s.log.Warn("cannot reuse published repositories, falling back to discovery", logger.Error(err))
			mode = ModeFallback
			repos, err = s.discoverer.Discover(ctx)
		}
	}
	if err != nil {
		return nil, mode, err
	}

	if s.seed != nil {
		extra, err := s.seed.Load()
		if err != nil {
			s.log.Warn("ignoring seed file", logger.Error(err))
		} else {
			before := len(repos)
			repos = Append(repos, extra...)
			s.log.Info("seed repositories added", logger.Int("added", len(repos)-before))
		}
	}

	s.log.Info("repositories selected",
		logger.String("mode", string(mode)),
		logger.Int("count", len(repos)))
	return repos, mode, nil
}

var errNoPublishedLists = errors.New("published snapshot has no lists")

func (s *Selector) reuse(ctx context.Context) ([]Repository, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reuse: %w", err)
	}
	if len(snap.Lists) == 0 {
		return nil, errNoPublishedLists
	}
	return FromSnapshot(snap), nil
}
