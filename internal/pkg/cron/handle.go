package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registrar adds jobs to a fresh scheduler. It runs on every Start and Restart,
// so schedules derived from settings pick up their current values.
type Registrar func(ctx context.Context, s *Scheduler) error

// Handle owns the running scheduler. A stopped Scheduler cannot be started
// again, so Restart builds a new one from the registrars.
type Handle struct {
	mu         sync.Mutex
	registrars []Registrar
	current    *Scheduler
}

func NewHandle(registrars ...Registrar) *Handle {
	return &Handle{registrars: registrars}
}

// Start builds and starts a scheduler. It is a no-op when one is already running.
func (h *Handle) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil {
		return nil
	}
	return h.startLocked(ctx)
}

// Stop stops the running scheduler and waits for its jobs to return.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopLocked()
}

// Restart replaces the running scheduler with a newly registered one.
func (h *Handle) Restart(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	slog.Info("Restarting cron scheduler")
	h.stopLocked()
	return h.startLocked(ctx)
}

// Running reports whether a scheduler is active.
func (h *Handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current != nil
}

// Jobs lists the jobs of the running scheduler.
func (h *Handle) Jobs() []Job {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		return nil
	}
	return h.current.Jobs()
}

func (h *Handle) startLocked(ctx context.Context) error {
	scheduler := NewScheduler()
	for _, register := range h.registrars {
		if err := register(ctx, scheduler); err != nil {
			return fmt.Errorf("failed to register cron jobs: %w", err)
		}
	}
	scheduler.Start()
	h.current = scheduler
	return nil
}

func (h *Handle) stopLocked() {
	if h.current == nil {
		return
	}
	h.current.Stop()
	h.current = nil
}
