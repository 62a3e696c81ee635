// Package pipeline wires one crawl run together: select repositories, sample,
// crawl, merge against the published snapshot, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/allocsoc/awesome-crawler/internal/crawl"
	"github.com/allocsoc/awesome-crawler/internal/delta"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/sampling"
	"github.com/allocsoc/awesome-crawler/internal/snapshot"
	"github.com/allocsoc/awesome-crawler/internal/sources"
	"github.com/allocsoc/awesome-crawler/internal/store"
)

// Selector chooses the repositories for a run. *sources.Selector implements it.
type Selector interface {
	Select(ctx context.Context, forceDiscovery bool) ([]sources.Repository, sources.Mode, error)
}

// Crawler runs the repository tasks. *crawl.Pool implements it.
type Crawler interface {
	Run(ctx context.Context, repos []sources.Repository) []crawl.Result
}

// Baseline loads the previously published snapshot.
type Baseline interface {
	Load(ctx context.Context) (snapshot.Snapshot, error)
}

// Publisher durably records the merged snapshot.
type Publisher interface {
	Publish(ctx context.Context, s snapshot.Snapshot) error
}

// Options are the per-run switches.
type Options struct {
	ForceDiscovery bool
	Sampling       bool
}

// Report summarizes a run.
type Report struct {
	RunID        string
	Mode         sources.Mode
	Repositories int // crawled, after sampling
	Succeeded    int
	Failed       int
	Entries      int // entries in the published snapshot
	Stats        delta.Stats
	Duration     time.Duration
}

// Runner executes runs. It holds no per-run state and may be reused.
type Runner struct {
	selector  Selector
	sampler   *sampling.Sampler
	crawler   Crawler
	baseline  Baseline
	publisher Publisher
	log       logger.Logger
}

func NewRunner(selector Selector, sampler *sampling.Sampler, crawler Crawler, baseline Baseline, publisher Publisher, log logger.Logger) *Runner {
	return &Runner{
		selector:  selector,
		sampler:   sampler,
		crawler:   crawler,
		baseline:  baseline,
		publisher: publisher,
		log:       log,
	}
}

// Run performs one pass. Individual repository failures are counted in the
// report, not returned. Errors come from selection, from reading the
// published snapshot (other than it not existing yet) and from publishing.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := r.log.With(logger.String("run_id", report.RunID))

	log.Info("crawl run started",
		logger.Bool("force_discovery", opts.ForceDiscovery),
		logger.Bool("sampling", opts.Sampling))

	repos, mode, err := r.selector.Select(ctx, opts.ForceDiscovery)
	if err != nil {
		return report, fmt.Errorf("select repositories: %w", err)
	}
	report.Mode = mode

	if opts.Sampling && r.sampler != nil {
		repos = r.sample(ctx, repos, log)
	}
	report.Repositories = len(repos)

	results := r.crawler.Run(ctx, repos)
	report.Succeeded = crawl.Succeeded(results)
	report.Failed = len(results) - report.Succeeded
	fresh := crawl.Assemble(results)

	old, err := r.baseline.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("no published snapshot yet, merging against an empty one")
		old = snapshot.Snapshot{}
	case err != nil:
		return report, fmt.Errorf("load published snapshot: %w", err)
	}

	merged, stats := delta.Merge(old, fresh)
	report.Stats = stats
	report.Entries = merged.EntryCount()

	if err := r.publisher.Publish(ctx, merged); err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	log.Info("crawl run finished",
		logger.String("mode", string(report.Mode)),
		logger.Int("repositories", report.Repositories),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Int("lists_carried", stats.ListsCarried),
		logger.Int("lists_merged", stats.ListsMerged),
		logger.Int("lists_added", stats.ListsAdded),
		logger.Int("entries_added", stats.EntriesAdded),
		logger.Int("entries_total", report.Entries),
		logger.Duration("took", report.Duration))
	return report, nil
}

// sample thins repos using the published snapshot. Without a readable
// snapshot every repository is crawled.
func (r *Runner) sample(ctx context.Context, repos []sources.Repository, log logger.Logger) []sources.Repository {
	previous, err := r.baseline.Load(ctx)
	if err != nil {
		log.Warn("cannot load published snapshot for sampling, crawling everything", logger.Error(err))
		return repos
	}
	sampling.LogStats(r.sampler.Stats(repos, previous), log)
	return r.sampler.Filter(repos, previous, log)
}
