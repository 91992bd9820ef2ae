package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	// ErrExists signals a duplicate registration where idempotency does not apply.
	ErrExists  = errors.New("already_exists")
	ErrInvalid = errors.New("invalid")
	// ErrInvalidSchedule covers malformed schedule kinds and out-of-range
	// weekday/day-of-month indices.
	ErrInvalidSchedule = errors.New("invalid_schedule")
	// ErrStorage wraps failures of the underlying database (I/O, corruption,
	// lock wait limits). Join with the driver error so both are visible to
	// errors.Is/As.
	ErrStorage = errors.New("storage")
)
