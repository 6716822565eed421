package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	DefaultJobTimeout     = 6 * time.Hour
)

// Job is one scheduled benchmark run.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron spec, never two at once.
type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	running sync.Mutex
	log     *slog.Logger
}

func New(ctx context.Context, spec string, job Job, timeout time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		spec:    spec,
		job:     job,
		timeout: timeout,
		log:     log,
	}
}

// Validate reports whether spec is a standard five-field cron expression.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	return nil
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runJob); err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	s.cron.Start()

	return nil
}

// Stop stops scheduling and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns the next activation time, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	return entries[0].Next
}

func (s *Scheduler) runJob() {
	if !s.running.TryLock() {
		s.log.WarnContext(s.ctx, "Previous benchmark is still running",
			"spec", s.spec)
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	start := time.Now()

	if err := s.job(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to run scheduled benchmark",
			"error", err,
			"spec", s.spec,
			"elapsedSeconds", time.Since(start).Seconds())
		return
	}

	s.log.InfoContext(ctx, "Scheduled benchmark is finished",
		"spec", s.spec,
		"elapsedSeconds", time.Since(start).Seconds())
}
