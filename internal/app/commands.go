package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remnd/internal/notify"
	"remnd/internal/remind"
	"remnd/internal/storage"
	"remnd/pkg/logx"
)

// ErrNoMatch reports an id that named no (active) reminder.
var ErrNoMatch = errors.New("no matching reminder")

const timeLayout = "2006-01-02 15:04:05"

// Add resolves the time expression against the real clock and inserts
// the reminder. The resolved instant must lie strictly in the future.
func (a *App) Add(ctx context.Context, when, text, note, every string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("reminder text is empty")
	}
	now := a.clock.Now().Truncate(time.Second)

	due, err := remind.ResolveTimeExpression(when, now)
	if err != nil {
		return err
	}
	due = due.Truncate(time.Second)
	if !due.After(now) {
		return fmt.Errorf("resolved due time %s is not in the future", due.Format(timeLayout))
	}

	var step remind.Step
	if strings.TrimSpace(every) != "" {
		if step, err = remind.ParseStep(every); err != nil {
			return err
		}
	}

	r := remind.Reminder{
		Text:      text,
		Note:      note,
		DueAt:     due,
		CreatedAt: now,
		Repeat:    step,
	}
	id, err := a.store.Add(ctx, r)
	if err != nil {
		return err
	}
	if step.IsZero() {
		fmt.Printf("added #%d @ %s\n", id, due.Format(timeLayout))
	} else {
		fmt.Printf("added #%d @ %s (every %s)\n", id, due.Format(timeLayout), step)
	}
	return nil
}

// List prints the reminder table: active ascending by due time;
// with all, completed ones follow.
func (a *App) List(ctx context.Context, all bool) error {
	rows, err := a.store.List(ctx, all)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No reminders.")
		return nil
	}

	fmt.Printf("%4s  %-19s  %-24s  %-6s  %-4s  %s\n", "ID", "Due", "Text", "Every", "Done", "Note")
	fmt.Println(strings.Repeat("-", 80))
	for _, r := range rows {
		done := " "
		if !r.IsActive() {
			done = "x"
		}
		text := r.Text
		if len(text) > 24 {
			text = text[:24]
		}
		fmt.Printf("%4d  %-19s  %-24s  %-6s  %-4s  %s\n",
			r.ID, r.DueAt.Format(timeLayout), text, r.Repeat.String(), done, r.Note)
	}
	return nil
}

// Complete marks a reminder done. One-shot reminders are completed for
// good; recurring ones roll over to their next future occurrence.
func (a *App) Complete(ctx context.Context, id int64) error {
	r, err := a.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: no active reminder #%d", ErrNoMatch, id)
	}
	if err != nil {
		return err
	}
	if !r.IsActive() {
		return fmt.Errorf("%w: #%d is already done", ErrNoMatch, id)
	}

	now := a.clock.Now().Truncate(time.Second)
	r = r.MarkComplete(now)
	if err := a.store.Update(ctx, r); err != nil {
		return err
	}
	if r.Repeat.IsZero() {
		fmt.Printf("marked #%d as done\n", id)
	} else {
		fmt.Printf("marked #%d as done; next occurrence %s\n", id, r.DueAt.Format(timeLayout))
	}
	return nil
}

// Delete removes a reminder by id.
func (a *App) Delete(ctx context.Context, id int64) error {
	ok, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: #%d", ErrNoMatch, id)
	}
	fmt.Printf("deleted #%d\n", id)
	return nil
}

// RunMode performs one engine invocation; this is the surface a
// systemd timer or cron line calls.
func (a *App) RunMode(ctx context.Context, modeStr string) error {
	mode, err := remind.ParseMode(modeStr)
	if err != nil {
		return err
	}
	notifier, err := notify.New(a.cfg.Notify, a.log.With(logx.String("component", "notify")))
	if err != nil {
		return err
	}
	engine := remind.NewEngine(a.store, notifier, a.log.With(logx.String("component", "engine")))

	n, err := engine.Run(ctx, mode, a.clock.Now().Truncate(time.Second))
	if err != nil {
		return err
	}
	fmt.Printf("notified %d reminder(s)\n", n)
	return nil
}
