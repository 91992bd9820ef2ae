package ledger

import (
	"time"

	"github.com/tinwood/ledgerd/internal/errs"
)

// ScheduleKind is the stored discriminator of a schedule variant.
type ScheduleKind string

const (
	Weekly  ScheduleKind = "weekly"
	Monthly ScheduleKind = "monthly"
)

// Schedule is a closed variant: weekly on a weekday (1=Monday .. 7=Sunday) or
// monthly on a day of month (1..31). Construction validates the index so
// matching never has to.
type Schedule struct {
	kind  ScheduleKind
	param int
}

// WeeklyOn returns a schedule firing on the given weekday, 1=Monday..7=Sunday.
func WeeklyOn(weekday int) (Schedule, error) {
	if weekday < 1 || weekday > 7 {
		return Schedule{}, errs.ErrInvalidSchedule
	}
	return Schedule{kind: Weekly, param: weekday}, nil
}

// MonthlyOn returns a schedule firing on the given day of month, 1..31.
func MonthlyOn(day int) (Schedule, error) {
	if day < 1 || day > 31 {
		return Schedule{}, errs.ErrInvalidSchedule
	}
	return Schedule{kind: Monthly, param: day}, nil
}

// ParseSchedule reconstructs a schedule from its stored (kind, index) pair.
func ParseSchedule(kind string, param int) (Schedule, error) {
	switch ScheduleKind(kind) {
	case Weekly:
		return WeeklyOn(param)
	case Monthly:
		return MonthlyOn(param)
	}
	return Schedule{}, errs.ErrInvalidSchedule
}

// Kind returns the stored schedule discriminator.
func (s Schedule) Kind() ScheduleKind { return s.kind }

// Param returns the stored weekday (1-7) or day-of-month (1-31) index.
func (s Schedule) Param() int { return s.param }

// Matches reports whether the schedule fires on the instant's calendar day.
// A monthly schedule whose day exceeds the days in t's month fires on the
// last day of that month instead of skipping it, so a day-31 rule still runs
// in February.
func (s Schedule) Matches(t time.Time) bool {
	switch s.kind {
	case Weekly:
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7 // time.Sunday is 0, stored encoding is Monday=1..Sunday=7
		}
		return wd == s.param
	case Monthly:
		d := s.param
		if last := daysIn(t); d > last {
			d = last
		}
		return t.Day() == d
	}
	return false
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
