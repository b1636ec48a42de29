package remind

import (
	"context"
	"sync"
	"time"

	"remnd/pkg/logx"
)

// Store is the persistence surface the engine consumes. LoadActive and
// Persist happen at most once per run; Persist must apply the whole
// batch under one write transaction.
type Store interface {
	LoadActive(ctx context.Context, now time.Time) ([]Reminder, error)
	Persist(ctx context.Context, reminders []Reminder) error
}

// Notifier delivers one notification. Failures are observed but do not
// unwind engine state: due-ness, not delivery confirmation, is the
// source of truth for "was this occurrence handled".
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Engine orchestrates one trigger invocation: load, evaluate, notify,
// persist. It holds no state between runs.
//
// Runs within one process are serialized by an internal mutex;
// cross-process serialization is the store's concern (the sqlite store
// takes the database write lock for the persist batch).
type Engine struct {
	mu       sync.Mutex
	store    Store
	notifier Notifier
	log      logx.Logger
}

func NewEngine(store Store, notifier Notifier, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{store: store, notifier: notifier, log: log}
}

// Run performs one evaluation at "now" under the given mode and
// returns how many reminders were surfaced.
//
// A reminder that fails validation is skipped with a warning; a notify
// failure is logged per reminder and does not revert the recorded
// notification. Store errors abort the run before anything persists.
func (e *Engine) Run(ctx context.Context, mode Mode, now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.store.LoadActive(ctx, now)
	if err != nil {
		return 0, err
	}

	valid := active[:0]
	for _, r := range active {
		if err := r.Validate(); err != nil {
			e.log.Warn("skipping malformed reminder", logx.Int64("id", r.ID), logx.Err(err))
			continue
		}
		valid = append(valid, r)
	}

	set := EvaluateDue(valid, now, mode)
	if len(set.ToNotify) == 0 {
		e.log.Debug("nothing due", logx.String("mode", string(mode)), logx.Time("now", now))
		return 0, nil
	}

	for _, r := range set.ToNotify {
		if err := e.notifier.Notify(ctx, r.Text, r.Note); err != nil {
			e.log.Warn("notification failed",
				logx.Int64("id", r.ID), logx.String("text", r.Text), logx.Err(err))
		}
	}

	if err := e.store.Persist(ctx, set.ToPersist); err != nil {
		return 0, err
	}

	e.log.Info("reminders surfaced",
		logx.String("mode", string(mode)),
		logx.Int("count", len(set.ToNotify)))
	return len(set.ToNotify), nil
}
