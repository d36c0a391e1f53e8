// Package scheduler implements the schedule command.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/crawler"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule [platform...]",
		Short: "Run crawls on the configured cron schedule",
		Long: `Schedule keeps running and starts a crawl whenever crawler.schedule fires.
A tick that arrives while a crawl is still running is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps, args, runNow)
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "start a crawl immediately as well as on schedule")
	return cmd
}

func run(ctx context.Context, deps common.CommandDeps, platforms []string, runNow bool) error {
	app, err := common.NewApp(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			deps.Logger.Warn("Failed to close resources", logger.Error(closeErr))
		}
	}()

	runner, err := app.NewRunner()
	if err != nil {
		return err
	}

	schedule := deps.Config.Crawler.Schedule
	s, err := NewScheduler(ctx, runner, schedule, platforms, deps.Logger)
	if err != nil {
		return err
	}

	deps.Logger.Info("Scheduler started", logger.String("schedule", schedule))
	s.Start()
	if runNow {
		go s.RunNow()
	}

	<-ctx.Done()
	deps.Logger.Info("Scheduler stopping, waiting for a running crawl")
	<-s.Stop().Done()
	return nil
}

// Crawler runs one crawl.
type Crawler interface {
	Run(ctx context.Context, platforms ...string) (*crawler.RunSummary, error)
}

// Scheduler triggers crawls on a cron schedule, never overlapping two runs.
type Scheduler struct {
	cron *cron.Cron
	job  cron.Job
}

// NewScheduler parses schedule, a standard five-field cron expression.
func NewScheduler(ctx context.Context, c Crawler, schedule string, platforms []string, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid crawler.schedule %q: %w", schedule, err)
	}

	cronLog := cronLogger{log: log}
	chain := cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))

	job := chain.Then(cron.FuncJob(func() {
		summary, err := c.Run(ctx, platforms...)
		switch {
		case errors.Is(err, context.Canceled):
			log.Info("Scheduled crawl interrupted")
		case err != nil:
			log.Error("Scheduled crawl failed", logger.Error(err))
		default:
			log.Info("Scheduled crawl finished", logger.String("run_id", summary.RunID))
		}
	}))

	cr := cron.New(cron.WithParser(parser), cron.WithLogger(cronLog))
	if _, err := cr.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("schedule crawl: %w", err)
	}

	return &Scheduler{cron: cr, job: job}, nil
}

// Start begins firing the schedule.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule; the returned context is done once a running crawl returns.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// RunNow triggers the job outside the schedule. It is skipped if a crawl is running.
func (s *Scheduler) RunNow() { s.job.Run() }

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, logger.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, logger.Error(err), logger.Any("details", keysAndValues))
}
