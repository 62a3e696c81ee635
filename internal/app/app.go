package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/config"
	"github.com/allocsoc/awesome-crawler/internal/httpserver"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/httpserver/mw"
	"github.com/allocsoc/awesome-crawler/internal/index"
	"github.com/allocsoc/awesome-crawler/internal/logger"
	"github.com/allocsoc/awesome-crawler/internal/scheduler"
	"github.com/allocsoc/awesome-crawler/internal/store"
	"github.com/allocsoc/awesome-crawler/internal/version"
)

// App is the reader service: it serves the published snapshot over HTTP.
type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	storage  *storage
	memIndex *index.MemoryIndex
	reloader *scheduler.SnapshotReloader
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Storage errors are fatal, a missing snapshot is not.
	st, err := openStorage(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	memIndex := index.NewMemoryIndex()
	reloader := scheduler.NewSnapshotReloader(
		store.NewSnapshotStore(st.objects, cfg.S3Key),
		memIndex,
		loggerClient,
		cfg.ReloadInterval,
	)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimit: mw.RateLimitConfig{
			Burst:      cfg.RateLimitBurst,
			PerMinute:  cfg.RateLimitPerMin,
			MaxEntries: 10000,
			TrustProxy: cfg.TrustProxy,
		},
		MemoryIndex: memIndex,
		Reloader:    reloader,
		DataSource:  st.source,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		storage:  st,
		memIndex: memIndex,
		reloader: reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting awesome-api %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("awesome-api %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer a.closeStorage()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.reloader.Start(ctx)
	a.logger.Info("snapshot reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Bool("data_loaded", a.memIndex.Loaded()))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.reloader.Stop()
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ awesome-api stopped cleanly")
	return nil
}

func (a *App) closeStorage() {
	if err := a.storage.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	}
	_ = a.logger.Sync()
}
