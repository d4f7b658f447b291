package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages periodic job execution using cron expressions. Each job
// runs on its own independent timer; a per-job mutex guarantees that a tick
// fires only after the previous invocation has returned (skip, don't queue —
// uses TryLock, which is atomic, so there is no race between check and
// acquire). A failing run is logged and does not cancel future ticks.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	states map[string]*jobState
	logger *slog.Logger
	cancel context.CancelFunc
}

// jobState carries the per-job tick lock and lifetime counters.
type jobState struct {
	lock     sync.Mutex
	runs     atomic.Uint64
	failures atomic.Uint64
	skips    atomic.Uint64
}

// JobStats is a point-in-time snapshot of a job's lifetime counters.
type JobStats struct {
	Runs     uint64
	Failures uint64
	Skips    uint64
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		states: make(map[string]*jobState),
		logger: logger,
	}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.states[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.states[name] = &jobState{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Stats reports the lifetime counters of a registered job. Unknown names
// return the zero value.
func (s *Scheduler) Stats(name string) JobStats {
	s.mu.Lock()
	state, ok := s.states[name]
	s.mu.Unlock()
	if !ok {
		return JobStats{}
	}
	return JobStats{
		Runs:     state.runs.Load(),
		Failures: state.failures.Load(),
		Skips:    state.skips.Load(),
	}
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, j := range s.jobs {
		job := j
		state := s.states[job.Name()]

		_, err := s.cron.AddFunc(job.Schedule(), func() {
			s.runJob(ctx, job, state)
		})
		if err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// runJob executes a single tick of a job. If the previous tick is still
// running the tick is skipped and counted, never queued.
func (s *Scheduler) runJob(ctx context.Context, job Job, state *jobState) {
	if !state.lock.TryLock() {
		state.skips.Add(1)
		s.logger.Warn("cron: job still running, skipping tick",
			"job", job.Name(),
		)
		return
	}
	defer state.lock.Unlock()

	state.runs.Add(1)
	start := time.Now()
	s.logger.Debug("cron: job started", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		state.failures.Add(1)
		s.logger.Error("cron: job failed",
			"job", job.Name(),
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	s.logger.Debug("cron: job completed",
		"job", job.Name(),
		"duration", time.Since(start),
	)
}

// Stop gracefully shuts down the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		// Wait for running jobs to complete.
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
