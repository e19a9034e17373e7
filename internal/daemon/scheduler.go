package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Runner is one scheduled unit of work, typically a producer run.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler executes a Runner on a fixed interval until the context is
// canceled. Runs never overlap: gocron skips a tick while the previous
// run is still going.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    Runner
	interval  time.Duration
}

func NewScheduler(runner Runner, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
	}, nil
}

// Run blocks until ctx is canceled, firing immediately and then every
// interval.
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.execute, ctx),
		gocron.WithName("backup"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create backup job: %w", err)
	}

	slog.Info("scheduler started", "interval", s.interval)
	s.scheduler.Start()

	<-ctx.Done()
	slog.Info("scheduler stopping")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) execute(ctx context.Context) {
	if err := s.runner.Run(ctx); err != nil {
		slog.Error("scheduled backup run failed", "error", err)
	}
}
