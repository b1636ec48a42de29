package remind

import (
	"errors"
	"fmt"
	"time"
)

// Reminder is the unit of scheduling.
//
// Optional timestamps use the zero time.Time as "absent"; the storage
// layer maps those to NULL columns. A zero Repeat step means the
// reminder is one-shot.
type Reminder struct {
	ID        int64
	Text      string
	Note      string
	DueAt     time.Time
	CreatedAt time.Time

	// Repeat, when non-zero, makes the reminder recurring: completion
	// advances DueAt instead of setting CompletedAt.
	Repeat Step

	CompletedAt    time.Time
	LastNotifiedAt time.Time
}

var ErrInvalidReminder = errors.New("invalid reminder")

// Validate checks the stored-record invariants. Records that fail it
// are skipped (with a warning) by the engine rather than aborting a
// whole run.
func (r Reminder) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidReminder)
	}
	if r.DueAt.IsZero() {
		return fmt.Errorf("%w: missing due time", ErrInvalidReminder)
	}
	if !r.CompletedAt.IsZero() && !r.Repeat.IsZero() {
		return fmt.Errorf("%w: recurring reminder marked completed", ErrInvalidReminder)
	}
	return nil
}

// IsActive reports whether the reminder can still fire.
// Recurring reminders are always active.
func (r Reminder) IsActive() bool { return r.CompletedAt.IsZero() }

// IsDue reports whether the reminder is active and its due time is at
// or before now.
func (r Reminder) IsDue(now time.Time) bool {
	return r.IsActive() && !r.DueAt.After(now)
}

// MarkComplete finishes the reminder at "now".
//
// One-shot reminders get CompletedAt set. Recurring reminders roll
// over instead: DueAt advances by the repeat step until it is strictly
// after now, so completing long after the original due time never
// leaves a backlog of already-past occurrences. The notified marker is
// cleared so the next occurrence fires fresh.
func (r Reminder) MarkComplete(now time.Time) Reminder {
	if r.Repeat.IsZero() {
		r.CompletedAt = now
		return r
	}
	due := r.DueAt
	for !due.After(now) {
		due = r.Repeat.Advance(due)
	}
	r.DueAt = due
	r.LastNotifiedAt = time.Time{}
	return r
}

// RecordNotified stamps the most recent successful notification.
func (r Reminder) RecordNotified(now time.Time) Reminder {
	r.LastNotifiedAt = now
	return r
}

// Clock supplies "now" to callers that otherwise stay deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real local time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
