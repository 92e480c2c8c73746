// internal/service/schedule/scheduler.go
package schedule

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Job is a periodic maintenance task. Run returns how many rows it touched.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) (int, error)
}

type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(location *time.Location, logger *zap.Logger) (*Scheduler, error) {
	if location == nil {
		location = time.UTC
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, logger: logger, ctx: ctx, cancel: cancel}, nil
}

// Add registers a job. Runs of the same job never overlap and the first run
// happens immediately on Start.
func (s *Scheduler) Add(job Job) error {
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if job.Timeout <= 0 {
		job.Timeout = job.Interval
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(job.Interval),
		gocron.NewTask(s.execute, job),
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		metrics.ScheduledJobRuns.WithLabelValues(job.Name, "error").Inc()
		s.logger.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}

	metrics.ScheduledJobRuns.WithLabelValues(job.Name, "ok").Inc()
	s.logger.Debug("scheduled job finished",
		zap.String("job", job.Name),
		zap.Int("affected", n),
		zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.scheduler.Jobs())))
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.scheduler.Shutdown()
}
