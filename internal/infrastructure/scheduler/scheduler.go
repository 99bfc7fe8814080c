package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is a unit of periodic work. It returns how many items it handled.
type Job interface {
	Run(ctx context.Context) (int, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) (int, error)

// Run calls f.
func (f JobFunc) Run(ctx context.Context) (int, error) {
	return f(ctx)
}

// Scheduler runs one job on a fixed interval until its context ends.
type Scheduler struct {
	name     string
	job      Job
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a scheduler for job.
func New(name string, job Job, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		name:     name,
		job:      job,
		interval: interval,
		logger:   logger.With().Str("component", "scheduler").Str("job", name).Logger(),
	}
}

// Start runs the job once immediately and then on every tick. Failures are
// logged and the loop keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()

	n, err := s.job.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("job failed")
		}
		return
	}

	if n > 0 {
		s.logger.Info().Int("handled", n).Dur("took", time.Since(start)).Msg("job completed")
	}
}
