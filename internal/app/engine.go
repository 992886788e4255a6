package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack_notifier/internal/domain/billing"
	"fintrack_notifier/internal/domain/card"
	"fintrack_notifier/internal/domain/notification"
	"fintrack_notifier/internal/domain/user"
	"fintrack_notifier/internal/infra/logger"
	"fintrack_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine is the run coordinator: the entry point the scheduler invokes on its
// approximately-daily cadence. It loads the active cards of every user with
// notifications enabled and drives each through evaluation, admission and
// dispatch. One bad card never aborts the rest of the batch.
type Engine struct {
	cards      card.Repository
	users      user.Repository
	ledger     notification.LedgerRepository
	dispatcher *Dispatcher
	metrics    *metrics.Metrics

	workerLimit int
	runTimeout  time.Duration
	retention   time.Duration

	running atomic.Bool
}

func NewEngine(
	cards card.Repository,
	users user.Repository,
	ledger notification.LedgerRepository,
	dispatcher *Dispatcher,
	m *metrics.Metrics,
	workerLimit int,
	runTimeout time.Duration,
	retention time.Duration,
) *Engine {
	if workerLimit < 1 {
		workerLimit = 1
	}
	return &Engine{
		cards:       cards,
		users:       users,
		ledger:      ledger,
		dispatcher:  dispatcher,
		metrics:     m,
		workerLimit: workerLimit,
		runTimeout:  runTimeout,
		retention:   retention,
	}
}

// RunDaily evaluates all cards against the current date.
func (e *Engine) RunDaily(ctx context.Context) error {
	return e.RunForDay(ctx, time.Now())
}

// RunForDay evaluates all cards against an explicit date. An error is
// returned only for batch-level failures the trigger should back off and
// retry (e.g. the card listing itself failed); per-card failures are recorded
// and swallowed, since the next scheduled run retries them naturally.
func (e *Engine) RunForDay(ctx context.Context, today time.Time) error {
	if !e.running.CompareAndSwap(false, true) {
		logger.Log.Warn("Skipping engine run: previous run still in progress")
		return nil
	}
	defer e.running.Store(false)

	today = billing.DateOnly(today)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	notifiable, err := e.users.ListNotifiable(ctx)
	if err != nil {
		e.metrics.ObserveRun("error", time.Since(start).Seconds())
		return fmt.Errorf("failed to list notifiable users: %w", err)
	}
	enabled := make(map[int64]bool, len(notifiable))
	for _, u := range notifiable {
		enabled[u.ID] = true
	}

	cards, err := e.cards.ListActive(ctx)
	if err != nil {
		e.metrics.ObserveRun("error", time.Since(start).Seconds())
		return fmt.Errorf("failed to list active cards: %w", err)
	}

	var failures atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(e.workerLimit)
	for _, c := range cards {
		if !enabled[c.UserID] {
			continue
		}
		c := c // per-iteration copy; required under go < 1.22 loop semantics
		g.Go(func() error {
			if ctx.Err() != nil {
				// Run timeout hit; remaining cards wait for the next run.
				return nil
			}
			if err := e.processCard(ctx, c, today); err != nil {
				failures.Add(1)
				e.metrics.IncCardFailure()
				logger.Log.WithError(err).WithField("card_id", c.ID).Warn("Card evaluation failed; will retry on next run")
			}
			return nil
		})
	}
	_ = g.Wait()

	result := "ok"
	if failures.Load() > 0 {
		result = "partial"
	}
	e.metrics.ObserveRun(result, time.Since(start).Seconds())
	logger.Log.WithFields(logrus.Fields{
		"date":     today.Format("2006-01-02"),
		"cards":    len(cards),
		"failures": failures.Load(),
		"duration": time.Since(start).String(),
	}).Info("Engine run finished")
	return nil
}

// processCard runs one card through evaluate -> admit -> dispatch.
func (e *Engine) processCard(ctx context.Context, c *card.Card, today time.Time) error {
	events, err := billing.Evaluate(c, today)
	if err != nil {
		return err
	}
	for _, ev := range events {
		exists, err := e.ledger.Exists(ctx, notification.KeyFor(ev))
		if err != nil {
			return fmt.Errorf("ledger admission check failed: %w", err)
		}
		if exists {
			e.metrics.IncDuplicate()
			logger.Log.WithFields(logrus.Fields{
				"card_id": ev.CardID,
				"kind":    ev.Kind,
				"date":    ev.Date.Format("2006-01-02"),
			}).Debug("Event already dispatched; skipping")
			continue
		}
		if err := e.dispatcher.Dispatch(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// PruneLedger removes ledger entries older than the retention window. Run on
// its own daily schedule.
func (e *Engine) PruneLedger(ctx context.Context) error {
	cutoff := time.Now().Add(-e.retention)
	n, err := e.ledger.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune dispatch ledger: %w", err)
	}
	e.metrics.AddPruned(n)
	if n > 0 {
		logger.Log.WithField("pruned", n).Info("Dispatch ledger pruned")
	}
	return nil
}
