package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/allocsoc/awesome-crawler/internal/logger"
)

// CronRunner runs a task on a cron schedule. A run that is still going when
// the next one is due makes that next one wait; runs never overlap.
type CronRunner struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	expr      string
	logger    logger.Logger
}

// NewCronRunner registers task under name. A five-field expression is minute
// based; a six-field one starts with seconds. ctx is handed to every run.
func NewCronRunner(ctx context.Context, name, expr string, task func(context.Context), log logger.Logger) (*CronRunner, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create cron scheduler: %w", err)
	}

	withSeconds := len(strings.Fields(expr)) == 6
	j, err := s.NewJob(
		gocron.CronJob(expr, withSeconds),
		gocron.NewTask(func() { task(ctx) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("create scheduled job %s: %w", name, err)
	}

	return &CronRunner{scheduler: s, job: j, expr: expr, logger: log}, nil
}

// Start begins executing the job.
func (c *CronRunner) Start() {
	c.scheduler.Start()
	c.logger.Info("scheduler started",
		logger.String("job", c.job.Name()),
		logger.String("cron", c.expr))
	if next, err := c.NextRun(); err == nil {
		c.logger.Info("next run scheduled", logger.Time("at", next))
	}
}

// NextRun reports when the job fires next.
func (c *CronRunner) NextRun() (time.Time, error) {
	return c.job.NextRun()
}

// Stop shuts down the scheduler and waits for a running job to finish.
func (c *CronRunner) Stop() error {
	return c.scheduler.Shutdown()
}
