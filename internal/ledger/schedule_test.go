package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/tinwood/ledgerd/internal/errs"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeeklyOn_Matches(t *testing.T) {
	// 2026-08-24 is a Monday.
	mon, err := WeeklyOn(1)
	if err != nil {
		t.Fatalf("WeeklyOn(1): %v", err)
	}
	if !mon.Matches(date(2026, time.August, 24)) {
		t.Fatalf("expected Monday rule to match a Monday")
	}
	if mon.Matches(date(2026, time.August, 25)) {
		t.Fatalf("Monday rule matched a Tuesday")
	}

	// Sunday stores as 7, not 0.
	sun, err := WeeklyOn(7)
	if err != nil {
		t.Fatalf("WeeklyOn(7): %v", err)
	}
	if !sun.Matches(date(2026, time.August, 30)) {
		t.Fatalf("expected Sunday rule to match a Sunday")
	}
}

func TestWeeklyOn_RejectsOutOfRange(t *testing.T) {
	for _, wd := range []int{0, 8, -1} {
		if _, err := WeeklyOn(wd); !errors.Is(err, errs.ErrInvalidSchedule) {
			t.Fatalf("WeeklyOn(%d): expected ErrInvalidSchedule, got %v", wd, err)
		}
	}
}

func TestMonthlyOn_Matches(t *testing.T) {
	r, err := MonthlyOn(15)
	if err != nil {
		t.Fatalf("MonthlyOn(15): %v", err)
	}
	if !r.Matches(date(2026, time.March, 15)) {
		t.Fatalf("expected day-15 rule to match the 15th")
	}
	if r.Matches(date(2026, time.March, 16)) {
		t.Fatalf("day-15 rule matched the 16th")
	}
}

func TestMonthlyOn_ClampsToShortMonths(t *testing.T) {
	r, err := MonthlyOn(31)
	if err != nil {
		t.Fatalf("MonthlyOn(31): %v", err)
	}
	// February 2026 has 28 days; the rule fires on the last day.
	if !r.Matches(date(2026, time.February, 28)) {
		t.Fatalf("day-31 rule should fire on Feb 28 in a non-leap year")
	}
	if r.Matches(date(2026, time.February, 27)) {
		t.Fatalf("day-31 rule fired before the last day of February")
	}
	// Leap year: last day is the 29th.
	if !r.Matches(date(2028, time.February, 29)) {
		t.Fatalf("day-31 rule should fire on Feb 29 in a leap year")
	}
	if r.Matches(date(2028, time.February, 28)) {
		t.Fatalf("day-31 rule fired on Feb 28 in a leap year")
	}
	// Months that do have a 31st are unaffected.
	if !r.Matches(date(2026, time.January, 31)) {
		t.Fatalf("day-31 rule should fire on Jan 31")
	}
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("weekly", 3)
	if err != nil {
		t.Fatalf("parse weekly: %v", err)
	}
	if s.Kind() != Weekly || s.Param() != 3 {
		t.Fatalf("unexpected schedule: %v %d", s.Kind(), s.Param())
	}
	if _, err := ParseSchedule("yearly", 1); !errors.Is(err, errs.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule for unknown kind, got %v", err)
	}
	if _, err := ParseSchedule("monthly", 32); !errors.Is(err, errs.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule for day 32, got %v", err)
	}
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"household", "joint-account", "a_b.c", "A1"} {
		if !ValidName(ok) {
			t.Errorf("ValidName(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", ".hidden", "a/b", "..", "a b", "café"} {
		if ValidName(bad) {
			t.Errorf("ValidName(%q) = true, want false", bad)
		}
	}
}
