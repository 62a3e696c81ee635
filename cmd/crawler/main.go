// Command crawler mines awesome-list histories and publishes the merged
// snapshot, either once ("run") or on a cron schedule ("schedule").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/allocsoc/awesome-crawler/internal/app"
	"github.com/allocsoc/awesome-crawler/internal/config"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "crawler",
		Short:        "Crawl awesome lists and publish newly added entries",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("all", false, "walk the whole commit history instead of the latest commits")
	rootCmd.PersistentFlags().Bool("dry-run", false, "write the merged snapshot to --output instead of the configured store")
	rootCmd.PersistentFlags().Bool("write-s3", true, "publish to the configured store (false behaves like --dry-run)")
	rootCmd.PersistentFlags().Bool("force-discovery", false, "discover repositories even when it is not the discovery day")
	rootCmd.PersistentFlags().Bool("probabilistic-sampling", true, "skip inactive repositories with a probability based on their last update")
	rootCmd.PersistentFlags().Int("workers", 0, "concurrent repository crawls (default: AWESOME_WORKERS)")
	rootCmd.PersistentFlags().String("output", "", "dry-run output file (default: AWESOME_OUTPUT)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one crawl and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCrawler(cmd, func(ctx context.Context, c *app.Crawler) error {
				_, err := c.RunOnce(ctx)
				return err
			})
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Crawl on AWESOME_SCHEDULE until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCrawler(cmd, func(ctx context.Context, c *app.Crawler) error {
				return c.Schedule(ctx)
			})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("crawler %s (commit=%s, built=%s, go=%s)\n",
				version.Version, version.Commit, version.BuildDate, version.GoVersion)
		},
	}

	rootCmd.AddCommand(runCmd, scheduleCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func withCrawler(cmd *cobra.Command, fn func(context.Context, *app.Crawler) error) error {
	flags := cmd.Flags()
	all, _ := flags.GetBool("all")
	dryRun, _ := flags.GetBool("dry-run")
	if write, _ := flags.GetBool("write-s3"); !write {
		dryRun = true
	}
	forceDiscovery, _ := flags.GetBool("force-discovery")
	samplingFlag, _ := flags.GetBool("probabilistic-sampling")
	workers, _ := flags.GetInt("workers")
	output, _ := flags.GetString("output")

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	// The flag only overrides the environment when given explicitly.
	sampling := cfg.Sampling
	if flags.Changed("probabilistic-sampling") {
		sampling = samplingFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("🚀 Starting crawler %s (commit=%s)", version.Version, version.Commit)

	c, err := app.NewCrawler(ctx, cfg, log, app.CrawlOptions{
		All:            all,
		DryRun:         dryRun,
		ForceDiscovery: forceDiscovery,
		Sampling:       sampling,
		Workers:        workers,
		Output:         output,
	})
	if err != nil {
		log.Error("❌ crawler failed to start", logger.Error(err))
		return err
	}
	defer c.Close()

	if err := fn(ctx, c); err != nil {
		log.Error("❌ crawl failed", logger.Error(err))
		return err
	}
	return nil
}
