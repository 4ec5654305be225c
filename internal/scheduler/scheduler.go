// Package scheduler runs cron-driven structure resets.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/rendis/dsviz/internal/logging"
	"github.com/rendis/dsviz/pkg/schema"
)

// Resetter is what a reset job drives. Satisfied by *visualizer.Service.
type Resetter interface {
	ClearKind(ctx context.Context, kind schema.StructureKind) error
}

// ResetterFunc adapts a function to Resetter.
type ResetterFunc func(ctx context.Context, kind schema.StructureKind) error

func (f ResetterFunc) ClearKind(ctx context.Context, kind schema.StructureKind) error {
	return f(ctx, kind)
}

// Run status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Job clears a set of structures on a cron schedule. An empty Structures
// list means every structure.
type Job struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Cron          string                 `json:"cron"`
	Structures    []schema.StructureKind `json:"structures,omitempty"`
	Enabled       bool                   `json:"enabled"`
	LastRunAt     *time.Time             `json:"last_run_at,omitempty"`
	NextRunAt     *time.Time             `json:"next_run_at,omitempty"`
	LastRunStatus string                 `json:"last_run_status,omitempty"`
}

// Scheduler checks its jobs on every tick and runs those that are due.
type Scheduler struct {
	resetter Resetter
	parser   cron.Parser
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex

	jobsMu sync.Mutex
	jobs   map[string]*Job

	inflightMu sync.Mutex
	inflight   map[string]struct{} // job IDs currently executing (dedup)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick period. Defaults to one minute, the cron
// resolution.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a Scheduler with no jobs.
func NewScheduler(r Resetter, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		resetter: r,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger:   logging.Default(logger),
		interval: time.Minute,
		now:      func() time.Time { return time.Now().UTC() },
		jobs:     make(map[string]*Job),
		inflight: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddJob validates the cron expression and structures, assigns an ID when
// missing and computes the first run.
func (s *Scheduler) AddJob(job Job) (Job, error) {
	if job.Cron == "" {
		return Job{}, schema.NewError(schema.ErrCodeValidation, "cron expression is required")
	}
	for _, k := range job.Structures {
		if _, err := schema.ParseStructureKind(string(k)); err != nil {
			return Job{}, err
		}
	}
	next, err := s.CalculateNextRun(job.Cron, s.now())
	if err != nil {
		return Job{}, schema.NewError(schema.ErrCodeValidation, err.Error()).WithCause(err)
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Name == "" {
		job.Name = "reset"
	}
	job.NextRunAt = &next

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	cp := job
	s.jobs[job.ID] = &cp
	return job, nil
}

// RemoveJob deletes a job.
func (s *Scheduler) RemoveJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "job %q not found", id)
	}
	delete(s.jobs, id)
	return nil
}

// SetEnabled toggles a job.
func (s *Scheduler) SetEnabled(id string, enabled bool) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "job %q not found", id)
	}
	j.Enabled = enabled
	return nil
}

// Jobs returns copies of all jobs ordered by name, then ID.
func (s *Scheduler) Jobs() []Job {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Name == out[k].Name {
			return out[i].ID < out[k].ID
		}
		return out[i].Name < out[k].Name
	})
	return out
}

func (s *Scheduler) dueJobs(now time.Time) []Job {
	var due []Job
	for _, j := range s.Jobs() {
		if j.Enabled && (j.NextRunAt == nil || !j.NextRunAt.After(now)) {
			due = append(due, j)
		}
	}
	return due
}

// Start launches the background scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}

	schedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(schedCtx)
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.Jobs())), slog.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every enabled job that is due and returns how many ran.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now()
	ran := 0
	for _, job := range s.dueJobs(now) {
		if !s.tryAcquire(job.ID) {
			continue // already running (dedup)
		}
		if err := s.runJob(ctx, job, now); err != nil {
			s.logger.Error("failed to run reset job",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)
		}
		s.releaseJob(job.ID)
		ran++
	}
	return ran
}

// RunNow runs one job immediately regardless of its schedule.
func (s *Scheduler) RunNow(ctx context.Context, id string) error {
	s.jobsMu.Lock()
	j, ok := s.jobs[id]
	var job Job
	if ok {
		job = *j
	}
	s.jobsMu.Unlock()
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "job %q not found", id)
	}
	if !s.tryAcquire(id) {
		return nil
	}
	defer s.releaseJob(id)
	return s.runJob(ctx, job, s.now())
}

// runJob clears the job's structures and updates its timestamps. A failed
// structure does not stop the others.
func (s *Scheduler) runJob(ctx context.Context, job Job, now time.Time) error {
	kinds := job.Structures
	if len(kinds) == 0 {
		kinds = schema.StructureKinds
	}
	s.logger.Info("running reset job",
		slog.String("job_id", job.ID),
		slog.String("name", job.Name),
		slog.Int("structures", len(kinds)),
	)

	status := StatusSuccess
	for _, kind := range kinds {
		kctx := logging.WithStructure(ctx, string(kind))
		if err := s.resetter.ClearKind(kctx, kind); err != nil {
			status = StatusError
			s.logger.ErrorContext(kctx, "reset failed",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.updateJobStatus(job.ID, job.Cron, now, status)
}

func (s *Scheduler) updateJobStatus(id, cronExpr string, now time.Time, status string) error {
	nextRun, err := s.CalculateNextRun(cronExpr, now)
	if err != nil {
		return fmt.Errorf("calculate next run for job %q: %w", id, err)
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil // removed while running
	}
	j.LastRunAt = &now
	j.NextRunAt = &nextRun
	j.LastRunStatus = status
	return nil
}

// tryAcquire returns true and marks the job as in-flight if it is not already running.
func (s *Scheduler) tryAcquire(jobID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, ok := s.inflight[jobID]; ok {
		return false
	}
	s.inflight[jobID] = struct{}{}
	return true
}

// releaseJob removes the job from the in-flight set.
func (s *Scheduler) releaseJob(jobID string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, jobID)
}

// CalculateNextRun computes the next run time for a cron expression.
func (s *Scheduler) CalculateNextRun(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := s.parser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return schedule.Next(from), nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("scheduler stopped")
	return nil
}

// Run starts the scheduler and blocks until ctx is done. Fits an errgroup.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}
