package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/allocsoc/awesome-crawler/internal/config"
	"github.com/allocsoc/awesome-crawler/internal/crawl"
	"github.com/allocsoc/awesome-crawler/internal/history"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/pipeline"
	"github.com/allocsoc/awesome-crawler/internal/publish"
	"github.com/allocsoc/awesome-crawler/internal/sampling"
	"github.com/allocsoc/awesome-crawler/internal/scheduler"
	"github.com/allocsoc/awesome-crawler/internal/sources"
	"github.com/allocsoc/awesome-crawler/internal/store"
)

// CrawlOptions are the command-line switches layered over the environment.
type CrawlOptions struct {
	All            bool   // walk the whole history instead of the last commits
	DryRun         bool   // publish to Output instead of the configured store
	ForceDiscovery bool   // discover repositories regardless of the weekday
	Sampling       bool   // activity-based sampling
	Workers        int    // 0 keeps cfg.Workers
	Output         string // empty keeps cfg.Output
}

// Crawler is the batch side: it owns the pipeline and the storage it
// reads from and publishes to.
type Crawler struct {
	cfg     *config.Config
	logger  logger.Logger
	storage *storage
	runner  *pipeline.Runner
	opts    CrawlOptions
}

// NewCrawler wires the pipeline. In dry-run mode the baseline still comes
// from the configured store; only the write goes to the output file.
func NewCrawler(ctx context.Context, cfg *config.Config, log logger.Logger, opts CrawlOptions) (*Crawler, error) {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	published := store.NewSnapshotStore(st.objects, cfg.S3Key)

	workers := cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	limit := cfg.CommitLimit
	if opts.All {
		limit = 0
	}

	walker := history.NewWalker(log)
	walker.TempDir = cfg.CloneDir

	var seed *sources.SeedLoader
	if cfg.SeedFile != "" {
		seed = sources.NewSeedLoader(cfg.SeedFile)
	}
	selector := sources.NewSelector(
		sources.NewDiscoverer(walker, cfg.DiscoveryURL, cfg.DiscoveryMax),
		published,
		seed,
		cfg.DiscoveryDay,
		log,
	)

	var publisher *publish.Publisher
	if opts.DryRun {
		output := cfg.Output
		if opts.Output != "" {
			output = opts.Output
		}
		out := store.NewSnapshotStore(store.NewFileObjectStore(filepath.Dir(output)), filepath.Base(output))
		log.Info("dry run, publishing to local file", logger.String("output", output))
		publisher = publish.NewPublisher(out, nil, log)
	} else {
		publisher = publish.NewPublisher(published, publish.NewNotifier(cfg.ReloadURL, cfg.NotifyTimeout), log)
	}

	runner := pipeline.NewRunner(
		selector,
		sampling.New(),
		crawl.NewPool(walker, workers, limit, log),
		published,
		publisher,
		log,
	)

	log.Info("crawler ready",
		logger.Int("workers", workers),
		logger.Int("commit_limit", limit),
		logger.Bool("dry_run", opts.DryRun))

	return &Crawler{cfg: cfg, logger: log, storage: st, runner: runner, opts: opts}, nil
}

// RunOnce performs a single crawl.
func (c *Crawler) RunOnce(ctx context.Context) (pipeline.Report, error) {
	return c.runner.Run(ctx, pipeline.Options{
		ForceDiscovery: c.opts.ForceDiscovery,
		Sampling:       c.opts.Sampling,
	})
}

// Schedule runs the crawl on cfg.Schedule until ctx is cancelled. A failed
// run is logged and the next one still happens. Abandoned scratch clones are
// swept in the background meanwhile.
func (c *Crawler) Schedule(ctx context.Context) error {
	cron, err := scheduler.NewCronRunner(ctx, "crawl", c.cfg.Schedule, func(ctx context.Context) {
		if _, err := c.RunOnce(ctx); err != nil {
			c.logger.Error("scheduled crawl failed", logger.Error(err))
		}
	}, c.logger)
	if err != nil {
		return err
	}

	sweeper := scheduler.NewCloneSweeper(c.cfg.CloneDir, c.logger, c.cfg.SweepInterval, c.cfg.CloneMaxAge)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	cron.Start()
	<-ctx.Done()
	c.logger.Info("⏳ Stopping scheduler, waiting for a running crawl...")
	return cron.Stop()
}

// Close releases the storage connection.
func (c *Crawler) Close() {
	if err := c.storage.Close(); err != nil {
		c.logger.Warn("failed to close storage", logger.Error(err))
	}
}
