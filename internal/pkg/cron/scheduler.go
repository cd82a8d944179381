package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Schedule computes the next activation strictly after the given moment.
type Schedule interface {
	Next(after time.Time) time.Time
	String() string
}

// Every fires at a fixed interval.
type Every time.Duration

func (e Every) Next(after time.Time) time.Time { return after.Add(time.Duration(e)) }
func (e Every) String() string                 { return "every " + time.Duration(e).String() }

// Daily fires once per day at a wall-clock time in a fixed location.
type Daily struct {
	Hour, Minute, Second int
	Location             *time.Location
}

// DailyAt builds a Daily schedule anchored to loc.
func DailyAt(hour, minute, second int, loc *time.Location) Daily {
	if loc == nil {
		loc = time.UTC
	}
	return Daily{Hour: hour, Minute: minute, Second: second, Location: loc}
}

func (d Daily) Next(after time.Time) time.Time {
	local := after.In(d.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, d.Second, 0, d.Location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, d.Second, 0, d.Location)
	}
	return next
}

func (d Daily) String() string {
	return fmt.Sprintf("daily at %02d:%02d:%02d %s", d.Hour, d.Minute, d.Second, d.Location)
}

// Job represents a scheduled job
type Job struct {
	Name     string
	Schedule Schedule
	Fn       func(ctx context.Context) error
}

type scheduledAtKey struct{}

// WithScheduledAt attaches the activation time a job run was scheduled for.
func WithScheduledAt(ctx context.Context, at time.Time) context.Context {
	return context.WithValue(ctx, scheduledAtKey{}, at)
}

// ScheduledAt returns the activation time of the current run, if any.
func ScheduledAt(ctx context.Context) (time.Time, bool) {
	at, ok := ctx.Value(scheduledAtKey{}).(time.Time)
	return at, ok
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	now     func() time.Time
	started bool
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, schedule Schedule, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Schedule: schedule,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "schedule", schedule.String())
}

// Jobs returns a copy of the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs. A run already in progress finishes
// its current record before the job goroutine observes cancellation.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob waits for each activation of a job until the scheduler stops.
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	for {
		now := s.now()
		next := job.Schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-s.ctx.Done():
			timer.Stop()
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-timer.C:
			s.executeJob(job, next)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job, scheduledAt time.Time) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name, "scheduled_at", scheduledAt)

	ctx := WithScheduledAt(context.WithoutCancel(s.ctx), scheduledAt)
	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
