package remind

import (
	"errors"
	"testing"
	"time"
)

func TestParseStepVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr   string
		fixed  time.Duration
		months int
		str    string
	}{
		{expr: "45m", fixed: 45 * time.Minute, str: "45m"},
		{expr: "2h", fixed: 2 * time.Hour, str: "2h"},
		{expr: "1d", fixed: 24 * time.Hour, str: "1d"},
		{expr: "2w", fixed: 14 * 24 * time.Hour, str: "2w"},
		{expr: "3mo", months: 3, str: "3mo"},
		{expr: " 1D ", fixed: 24 * time.Hour, str: "1d"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseStep(tt.expr)
			if err != nil {
				t.Fatalf("ParseStep(%q) error: %v", tt.expr, err)
			}
			if got.Fixed != tt.fixed || got.Months != tt.months {
				t.Fatalf("ParseStep(%q) = %+v", tt.expr, got)
			}
			if got.String() != tt.str {
				t.Fatalf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestParseStepInvalid(t *testing.T) {
	t.Parallel()
	for _, expr := range []string{"", "0d", "d", "10", "1x", "-1h", "1h30m"} {
		if _, err := ParseStep(expr); err == nil {
			t.Errorf("ParseStep(%q): expected error", expr)
		} else if !errors.Is(err, ErrParse) {
			t.Errorf("ParseStep(%q): error %v does not wrap ErrParse", expr, err)
		}
	}
}

func TestStepAdvanceMonthClamp(t *testing.T) {
	t.Parallel()
	step := Step{Months: 1}

	// Jan 31 -> Feb 28; the clamp has no anchor-day memory, so the
	// next advance stays on the 28th.
	d := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
	d = step.Advance(d)
	if want := time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC); !d.Equal(want) {
		t.Fatalf("first advance = %v, want %v", d, want)
	}
	d = step.Advance(d)
	if want := time.Date(2025, time.March, 28, 9, 0, 0, 0, time.UTC); !d.Equal(want) {
		t.Fatalf("second advance = %v, want %v", d, want)
	}
}

func TestStepAdvanceLeapYear(t *testing.T) {
	t.Parallel()
	step := Step{Months: 12}
	d := time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC)
	got := step.Advance(d)
	if want := time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("advance = %v, want %v", got, want)
	}
}
