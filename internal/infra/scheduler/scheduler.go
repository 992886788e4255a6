package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack_notifier/internal/infra/logger"

	"github.com/robfig/cron/v3"
)

// Registry wraps a cron engine with named, uniquely-registered triggers.
// Registering a name that already exists keeps the existing trigger untouched,
// so process restarts can re-register their jobs unconditionally without
// creating duplicates.
type Registry struct {
	cronEngine *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewRegistry() *Registry {
	return &Registry{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		entries:    make(map[string]cron.EntryID),
	}
}

// Register adds a named job with the given cron spec. If a job with this name
// is already registered, the existing one is kept and no error is returned.
func (r *Registry) Register(name, spec string, job func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		logger.Log.WithField("trigger", name).Debug("Trigger already registered; keeping existing entry")
		return nil
	}
	id, err := r.cronEngine.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("could not register trigger %q: %w", name, err)
	}
	r.entries[name] = id
	logger.Log.WithField("trigger", name).WithField("spec", spec).Info("Trigger registered")
	return nil
}

// RegisterDelayed registers the job after an initial delay, unless the name
// is taken by then. Used to keep the first run away from process start, the
// same way the mobile worker deferred its first check by an hour.
func (r *Registry) RegisterDelayed(name, spec string, delay time.Duration, job func()) {
	if delay <= 0 {
		if err := r.Register(name, spec, job); err != nil {
			logger.Log.WithError(err).WithField("trigger", name).Error("Trigger registration failed")
		}
		return
	}
	time.AfterFunc(delay, func() {
		if err := r.Register(name, spec, job); err != nil {
			logger.Log.WithError(err).WithField("trigger", name).Error("Delayed trigger registration failed")
		}
	})
}

// Unregister removes a named job. Unknown names are a no-op; callers invoke
// this when a user disables notifications and must not care whether the
// trigger was ever registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.entries[name]
	if !ok {
		return
	}
	r.cronEngine.Remove(id)
	delete(r.entries, name)
	logger.Log.WithField("trigger", name).Info("Trigger unregistered")
}

// Registered reports whether a trigger with the given name exists.
func (r *Registry) Registered(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

func (r *Registry) Start() {
	r.cronEngine.Start()
	logger.Log.Info("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (r *Registry) Stop() {
	ctx := r.cronEngine.Stop()
	<-ctx.Done()
	logger.Log.Info("Scheduler gracefully stopped")
}

// Engine is the subset of the run coordinator the scheduler drives.
type Engine interface {
	RunDaily(ctx context.Context) error
	PruneLedger(ctx context.Context) error
}

// Trigger names for the notifier's jobs.
const (
	TriggerDailyCheck  = "card-deadline-daily-check"
	TriggerLedgerPrune = "dispatch-ledger-prune"
)

// RegisterNotifierJobs wires the engine's daily evaluation and ledger prune
// onto the registry. jobTimeout caps each invocation independently of the
// engine's own run timeout.
func RegisterNotifierJobs(r *Registry, engine Engine, dailySpec, pruneSpec string, initialDelay, jobTimeout time.Duration) {
	r.RegisterDelayed(TriggerDailyCheck, dailySpec, initialDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := engine.RunDaily(ctx); err != nil {
			logger.Log.WithError(err).Error("Daily deadline check failed; scheduler will retry on next cadence")
		}
	})
	r.RegisterDelayed(TriggerLedgerPrune, pruneSpec, initialDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := engine.PruneLedger(ctx); err != nil {
			logger.Log.WithError(err).Error("Ledger prune failed")
		}
	})
}
