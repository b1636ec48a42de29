package remind

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Step is a repeat cadence: either a fixed duration (minutes, hours,
// days, weeks) or a whole number of calendar months. Months stay
// symbolic because their length varies; they are resolved against a
// concrete date at advancement time.
type Step struct {
	Fixed  time.Duration
	Months int
}

func (s Step) IsZero() bool { return s.Fixed == 0 && s.Months == 0 }

// Advance applies one cadence step to t. Month steps add calendar
// months, clamping an overflowing day-of-month to the end of the
// target month (Jan 31 + 1mo = Feb 28/29).
func (s Step) Advance(t time.Time) time.Time {
	if s.Months != 0 {
		return addMonths(t, s.Months)
	}
	return t.Add(s.Fixed)
}

func (s Step) String() string {
	switch {
	case s.Months != 0:
		return strconv.Itoa(s.Months) + "mo"
	case s.Fixed == 0:
		return ""
	case s.Fixed%week == 0:
		return strconv.FormatInt(int64(s.Fixed/week), 10) + "w"
	case s.Fixed%day == 0:
		return strconv.FormatInt(int64(s.Fixed/day), 10) + "d"
	case s.Fixed%time.Hour == 0:
		return strconv.FormatInt(int64(s.Fixed/time.Hour), 10) + "h"
	default:
		return strconv.FormatInt(int64(s.Fixed/time.Minute), 10) + "m"
	}
}

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// ParseStep parses a repeat cadence expression: "<integer><unit>" with
// unit one of m (minute), h (hour), d (day), w (week), mo (month).
func ParseStep(expr string) (Step, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Step{}, fmt.Errorf("%w: empty repeat interval", ErrParse)
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Step{}, fmt.Errorf("%w: repeat interval %q: missing count", ErrParse, expr)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return Step{}, fmt.Errorf("%w: repeat interval %q: bad count: %v", ErrParse, expr, err)
	}
	if n <= 0 {
		return Step{}, fmt.Errorf("%w: repeat interval %q: count must be positive", ErrParse, expr)
	}
	switch unit := s[i:]; unit {
	case "m":
		return Step{Fixed: time.Duration(n) * time.Minute}, nil
	case "h":
		return Step{Fixed: time.Duration(n) * time.Hour}, nil
	case "d":
		return Step{Fixed: time.Duration(n) * day}, nil
	case "w":
		return Step{Fixed: time.Duration(n) * week}, nil
	case "mo":
		return Step{Months: n}, nil
	default:
		return Step{}, fmt.Errorf("%w: repeat interval %q: unknown unit %q", ErrParse, expr, unit)
	}
}

// addMonths adds n calendar months, clamping the day-of-month to the
// last valid day of the target month. The clamp is applied per step
// (no anchor-day memory), matching absolute-date resolution.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
