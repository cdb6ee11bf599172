// Package scheduler runs the alert sweep on a daily cron timer.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/gym-membership/internal/config"
	"github.com/segyhp/gym-membership/internal/domain"
)

type Sweeper interface {
	Run(ctx context.Context) (*domain.SweepResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// New registers the daily sweep at SWEEP_TIME in SCHEDULER_TIMEZONE.
func New(sweeper Sweeper, cfg *config.Config, logger *zap.Logger) (*Scheduler, error) {
	logger = logger.Named("scheduler")
	cronLog := cronLogger{logger.Sugar()}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		spec:    cfg.SweepCronSpec(),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := c.AddFunc(s.spec, func() { s.RunNow(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule alert sweep %q: %w", s.spec, err)
	}

	return s, nil
}

// Start sweeps once immediately and then hands over to the cron timer.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	go s.RunNow(s.ctx)
	s.cron.Start()
}

// Stop halts the timer and waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out, cancelling sweep")
	}
	s.cancel()
	s.logger.Info("scheduler stopped")
}

// RunNow performs a single sweep; failures are logged and retried at the next tick.
func (s *Scheduler) RunNow(ctx context.Context) {
	result, err := s.sweeper.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled alert sweep failed", zap.Error(err))
		return
	}
	if result.Skipped {
		s.logger.Debug("scheduled alert sweep skipped")
	}
}

// Next reports when the sweep fires next, or "" before Start.
func (s *Scheduler) Next() string {
	for _, e := range s.cron.Entries() {
		if !e.Next.IsZero() {
			return e.Next.Format("2006-01-02 15:04:05 MST")
		}
	}
	return ""
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
