package remind

import (
	"errors"
	"testing"
	"time"
)

func TestResolveTimeExpressionVariants(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{name: "minutes", expr: "10m", want: now.Add(10 * time.Minute)},
		{name: "additive tokens", expr: "1h30m", want: now.Add(90 * time.Minute)},
		{name: "days and hours", expr: "2d4h", want: now.Add(52 * time.Hour)},
		{name: "weeks", expr: "2w", want: now.Add(14 * 24 * time.Hour)},
		{name: "calendar month", expr: "1mo", want: time.Date(2025, time.April, 15, 10, 30, 0, 0, time.UTC)},
		{name: "month plus fixed", expr: "1mo2h", want: time.Date(2025, time.April, 15, 12, 30, 0, 0, time.UTC)},
		{name: "today", expr: "today 23:59", want: time.Date(2025, time.March, 15, 23, 59, 0, 0, time.UTC)},
		{name: "tomorrow with seconds", expr: "tomorrow 08:00:30", want: time.Date(2025, time.March, 16, 8, 0, 30, 0, time.UTC)},
		{name: "bare clock ahead", expr: "10:31", want: time.Date(2025, time.March, 15, 10, 31, 0, 0, time.UTC)},
		{name: "bare clock passed", expr: "09:00", want: time.Date(2025, time.March, 16, 9, 0, 0, 0, time.UTC)},
		{name: "bare clock equal rolls over", expr: "10:30", want: time.Date(2025, time.March, 16, 10, 30, 0, 0, time.UTC)},
		{name: "date defaults", expr: "25-12", want: time.Date(2025, time.December, 25, 9, 0, 0, 0, time.UTC)},
		{name: "date with time", expr: "01-06 17:30", want: time.Date(2025, time.June, 1, 17, 30, 0, 0, time.UTC)},
		{name: "two digit year", expr: "25-12-30 18:00", want: time.Date(2030, time.December, 25, 18, 0, 0, 0, time.UTC)},
		{name: "four digit year", expr: "29-02-2028", want: time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC)},
		{name: "case and spacing", expr: "  Tomorrow 08:00 ", want: time.Date(2025, time.March, 16, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTimeExpression(tt.expr, now)
			if err != nil {
				t.Fatalf("ResolveTimeExpression(%q) error: %v", tt.expr, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ResolveTimeExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestResolveTimeExpressionInvalid(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	exprs := []string{
		"",
		"xyz",
		"0d",          // non-positive count
		"24:00",       // hour out of range
		"07:60",       // minute out of range
		"today",       // missing time of day
		"tomorrow 25", // not a clock
		"31-04",       // April has 30 days
		"29-02-25",    // 2025 is not a leap year
		"10-13",       // month out of range
		"01-06-123",   // 3-digit year
		"45s",         // unknown unit
	}
	for _, expr := range exprs {
		if _, err := ResolveTimeExpression(expr, now); err == nil {
			t.Errorf("ResolveTimeExpression(%q): expected error", expr)
		} else if !errors.Is(err, ErrParse) {
			t.Errorf("ResolveTimeExpression(%q): error %v does not wrap ErrParse", expr, err)
		}
	}
}

func TestResolveBareClockNeverPast(t *testing.T) {
	t.Parallel()
	// For any "now", resolving now's own time of day lands exactly 24h ahead.
	nows := []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2024, time.February, 28, 12, 0, 0, 0, time.UTC),
	}
	for _, now := range nows {
		expr := now.Format("15:04:05")
		got, err := ResolveTimeExpression(expr, now)
		if err != nil {
			t.Fatalf("ResolveTimeExpression(%q) error: %v", expr, err)
		}
		if want := now.Add(24 * time.Hour); !got.Equal(want) {
			t.Fatalf("ResolveTimeExpression(%q) at %v = %v, want %v", expr, now, got, want)
		}
	}
}

func TestResolveMonthClampsToMonthEnd(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.January, 31, 8, 0, 0, 0, time.UTC)
	got, err := ResolveTimeExpression("1mo", now)
	if err != nil {
		t.Fatalf("ResolveTimeExpression error: %v", err)
	}
	want := time.Date(2025, time.February, 28, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
