// Package ledger holds the domain types shared across storage, services and
// the HTTP API: transaction entries, recurrence rules and their schedules.
package ledger

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/tinwood/ledgerd/internal/errs"
)

// Entry is one transaction in a ledger's ordered log. Seq is assigned by the
// store and defines the total order. Balance is the running balance: the sum
// of all amounts with a sequence number <= Seq.
type Entry struct {
	Seq         int64
	Amount      int64
	Balance     int64
	Description string
	CreatedAt   time.Time
}

// Rule is a standing instruction to append a fixed transaction whenever its
// schedule matches the calendar. Rules are never edited in place; delete and
// recreate instead.
type Rule struct {
	ID          uuid.UUID
	Schedule    Schedule
	Amount      int64
	Description string
}

// Direction filters a listing to one side of the ledger.
type Direction string

const (
	Debits  Direction = "debits"
	Credits Direction = "credits"
)

// ParseDirection validates a direction string from the API boundary.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Debits, Credits:
		return Direction(s), nil
	}
	return "", errs.ErrInvalid
}

// Ledger names double as database file names, so they are restricted to a
// conservative alphabet and must not start with a dot.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidName reports whether s is usable as a ledger name.
func ValidName(s string) bool {
	return s != "" && len(s) <= 128 && nameRe.MatchString(s)
}
