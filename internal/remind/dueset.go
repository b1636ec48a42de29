package remind

import (
	"fmt"
	"sort"
	"time"
)

// Mode names a trigger surface. Each mode applies a different
// selection policy over the currently due reminders.
type Mode string

const (
	// ModeMinute picks reminders that just crossed their due time and
	// were never notified. Fires once per reminder until completion or
	// a re-notify changes state.
	ModeMinute Mode = "minute"
	// ModeRenotify re-surfaces due reminders whose last notification
	// is older than RenotifyAfter.
	ModeRenotify Mode = "renotify"
	// ModeCatchup surfaces every currently due reminder regardless of
	// notification history; used once shortly after session start.
	ModeCatchup Mode = "catchup"
)

// RenotifyAfter is the staleness window for ModeRenotify. Fixed, not
// configurable.
const RenotifyAfter = 24 * time.Hour

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeMinute, ModeRenotify, ModeCatchup:
		return m, nil
	default:
		return "", fmt.Errorf("unknown trigger mode %q (want minute, renotify or catchup)", s)
	}
}

// DueSet is the outcome of one evaluation: the reminders to surface
// and the mutated records to write back. Both carry the same records,
// already stamped with RecordNotified.
type DueSet struct {
	ToNotify  []Reminder
	ToPersist []Reminder
}

// EvaluateDue selects the reminders the given mode should surface at
// "now" and stamps them as notified. Selection order is ascending
// DueAt, ties broken by ascending ID, so multiple reminders firing
// together come out oldest-due-first every time.
func EvaluateDue(reminders []Reminder, now time.Time, mode Mode) DueSet {
	sorted := make([]Reminder, len(reminders))
	copy(sorted, reminders)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].DueAt.Equal(sorted[j].DueAt) {
			return sorted[i].DueAt.Before(sorted[j].DueAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var out DueSet
	for _, r := range sorted {
		if !r.IsDue(now) {
			continue
		}
		if !selects(mode, r, now) {
			continue
		}
		r = r.RecordNotified(now)
		out.ToNotify = append(out.ToNotify, r)
		out.ToPersist = append(out.ToPersist, r)
	}
	return out
}

func selects(mode Mode, r Reminder, now time.Time) bool {
	switch mode {
	case ModeMinute:
		return r.LastNotifiedAt.IsZero()
	case ModeRenotify:
		return r.LastNotifiedAt.IsZero() || now.Sub(r.LastNotifiedAt) > RenotifyAfter
	case ModeCatchup:
		return true
	default:
		return false
	}
}
