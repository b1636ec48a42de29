package remind

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse marks malformed or out-of-range user input (time
// expressions and repeat intervals). Callers branch with errors.Is.
var ErrParse = errors.New("parse error")

// ResolveTimeExpression turns user text into a concrete timestamp,
// resolved against "now" in its location. Forms, in precedence order:
//
//  1. Relative duration tokens: "10m", "2d4h", "1mo2w". Units are
//     w/d/h/m plus mo (calendar month, clamped at month end).
//  2. "today HH:MM[:SS]" / "tomorrow HH:MM[:SS]".
//  3. Bare "HH:MM[:SS]": today if still ahead, otherwise tomorrow.
//  4. "DD-MM[-YY|-YYYY] [HH:MM[:SS]]": year defaults to the current
//     one, time-of-day to 09:00:00, two-digit years to 2000+YY.
//
// The result may lie in the past for absolute forms; rejecting that is
// the caller's decision.
func ResolveTimeExpression(expr string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty time expression", ErrParse)
	}

	if t, ok, err := resolveRelative(s, now); ok {
		return t, err
	}

	fields := strings.Fields(s)
	switch fields[0] {
	case "today", "tomorrow":
		return resolveKeyword(fields, now)
	}

	if len(fields) == 1 && strings.Contains(fields[0], ":") {
		return resolveBareClock(fields[0], now)
	}

	if isDateShape(fields[0]) {
		return resolveCalendar(fields, now)
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized time expression %q", ErrParse, expr)
}

// resolveRelative handles form 1. ok reports whether the input has the
// relative-duration shape at all; err carries value errors (zero
// counts) once the shape matched.
func resolveRelative(s string, now time.Time) (time.Time, bool, error) {
	var (
		sum    time.Duration
		months int
		tokens int
	)
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			return time.Time{}, false, nil
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			return time.Time{}, false, nil
		}
		var unitLen int
		switch {
		case strings.HasPrefix(s[j:], "mo"):
			months += n
			unitLen = 2
		case j < len(s) && s[j] == 'w':
			sum += time.Duration(n) * week
			unitLen = 1
		case j < len(s) && s[j] == 'd':
			sum += time.Duration(n) * day
			unitLen = 1
		case j < len(s) && s[j] == 'h':
			sum += time.Duration(n) * time.Hour
			unitLen = 1
		case j < len(s) && s[j] == 'm':
			sum += time.Duration(n) * time.Minute
			unitLen = 1
		default:
			return time.Time{}, false, nil
		}
		if n <= 0 {
			return time.Time{}, true, fmt.Errorf("%w: duration count must be positive in %q", ErrParse, s)
		}
		tokens++
		i = j + unitLen
	}
	if tokens == 0 {
		return time.Time{}, false, nil
	}
	// Months first, so the end-of-month clamp depends only on now's
	// calendar position; the fixed remainder is plain addition.
	t := now
	if months > 0 {
		t = addMonths(t, months)
	}
	return t.Add(sum), true, nil
}

func resolveKeyword(fields []string, now time.Time) (time.Time, error) {
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q needs a time of day (e.g. %q)", ErrParse, fields[0], fields[0]+" 17:30")
	}
	hh, mm, ss, err := parseClock(fields[1])
	if err != nil {
		return time.Time{}, err
	}
	d := now
	if fields[0] == "tomorrow" {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, ss, 0, now.Location()), nil
}

func resolveBareClock(s string, now time.Time) (time.Time, error) {
	hh, mm, ss, err := parseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, ss, 0, now.Location())
	// A time-of-day that has already passed means the next one.
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func resolveCalendar(fields []string, now time.Time) (time.Time, error) {
	if len(fields) > 2 {
		return time.Time{}, fmt.Errorf("%w: too many fields in date expression", ErrParse)
	}
	parts := strings.Split(fields[0], "-")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("%w: date must be DD-MM or DD-MM-YYYY", ErrParse)
	}

	d, err := parseIntField("day", parts[0])
	if err != nil {
		return time.Time{}, err
	}
	mo, err := parseIntField("month", parts[1])
	if err != nil {
		return time.Time{}, err
	}
	year := now.Year()
	if len(parts) == 3 {
		y, err := parseIntField("year", parts[2])
		if err != nil {
			return time.Time{}, err
		}
		switch len(parts[2]) {
		case 2:
			year = 2000 + y
		case 4:
			year = y
		default:
			return time.Time{}, fmt.Errorf("%w: year must be 2 or 4 digits, got %q", ErrParse, parts[2])
		}
	}

	if mo < 1 || mo > 12 {
		return time.Time{}, fmt.Errorf("%w: month %d out of range", ErrParse, mo)
	}
	if last := daysIn(year, time.Month(mo)); d < 1 || d > last {
		return time.Time{}, fmt.Errorf("%w: day %d invalid for %04d-%02d", ErrParse, d, year, mo)
	}

	// Missing time-of-day defaults to 09:00:00.
	hh, mm, ss := 9, 0, 0
	if len(fields) == 2 {
		if hh, mm, ss, err = parseClock(fields[1]); err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(year, time.Month(mo), d, hh, mm, ss, 0, now.Location()), nil
}

func isDateShape(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return false
			}
		}
	}
	return true
}

func parseClock(s string) (hh, mm, ss int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("%w: time of day must be HH:MM or HH:MM:SS, got %q", ErrParse, s)
	}
	if hh, err = parseIntField("hour", parts[0]); err != nil {
		return 0, 0, 0, err
	}
	if mm, err = parseIntField("minute", parts[1]); err != nil {
		return 0, 0, 0, err
	}
	if len(parts) == 3 {
		if ss, err = parseIntField("second", parts[2]); err != nil {
			return 0, 0, 0, err
		}
	}
	if hh > 23 {
		return 0, 0, 0, fmt.Errorf("%w: hour %d out of range", ErrParse, hh)
	}
	if mm > 59 {
		return 0, 0, 0, fmt.Errorf("%w: minute %d out of range", ErrParse, mm)
	}
	if ss > 59 {
		return 0, 0, 0, fmt.Errorf("%w: second %d out of range", ErrParse, ss)
	}
	return hh, mm, ss, nil
}

func parseIntField(name, raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: empty %s", ErrParse, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad %s %q", ErrParse, name, raw)
	}
	return n, nil
}
