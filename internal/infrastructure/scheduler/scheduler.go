// Package scheduler implements background job scheduling for TestMancer.
// It runs periodic tasks such as the leaderboard refresh that shifts
// timeframe windows and catches events lost by the in-memory bus.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the next time the job should run after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler manages and executes scheduled jobs. Each job runs in its
// own goroutine loop; overlapping runs of the same job are prevented
// by the loop structure itself.
type Scheduler struct {
	mu sync.RWMutex

	logger   *slog.Logger
	timezone *time.Location

	jobs     map[string]*scheduledJob
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastRuns map[string]JobResult
}

type scheduledJob struct {
	job      Job
	schedule Schedule
}

// New creates a scheduler. The timezone anchors calendar-based
// schedules; pass nil for UTC.
func New(logger *slog.Logger, timezone *time.Location) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timezone == nil {
		timezone = time.UTC
	}
	return &Scheduler{
		logger:   logger.With("component", "scheduler"),
		timezone: timezone,
		jobs:     make(map[string]*scheduledJob),
		lastRuns: make(map[string]JobResult),
	}
}

// Register adds a job with its schedule. Returns an error if a job
// with the same name is already registered or the scheduler runs.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler: cannot register %q while running", job.Name())
	}
	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name())
	}

	s.jobs[job.Name()] = &scheduledJob{job: job, schedule: schedule}
	return nil
}

// Start launches all registered job loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	jobs := make([]*scheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	for _, j := range jobs {
		s.wg.Add(1)
		go s.runLoop(j)
	}

	s.logger.Info("scheduler started", "jobs", len(jobs))
	return nil
}

// Stop cancels all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// LastRun returns the most recent result of a job, if it has run.
func (s *Scheduler) LastRun(jobName string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.lastRuns[jobName]
	return result, ok
}

func (s *Scheduler) runLoop(j *scheduledJob) {
	defer s.wg.Done()

	for {
		now := time.Now().In(s.timezone)
		next := j.schedule.Next(now)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.execute(j.job)
	}
}

func (s *Scheduler) execute(job Job) {
	started := time.Now()
	s.logger.Debug("job starting", "job", job.Name())

	err := s.runSafely(job)

	result := JobResult{
		JobName:     job.Name(),
		StartedAt:   started,
		CompletedAt: time.Now(),
		Duration:    time.Since(started),
		Success:     err == nil,
		Error:       err,
	}

	s.mu.Lock()
	s.lastRuns[job.Name()] = result
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			"job", job.Name(),
			"duration", result.Duration.String(),
			"error", err,
		)
		return
	}
	s.logger.Info("job completed",
		"job", job.Name(),
		"duration", result.Duration.String(),
	)
}

// runSafely converts a job panic into an error so one bad run does not
// take the whole process down.
func (s *Scheduler) runSafely(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %q panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(s.ctx)
}
