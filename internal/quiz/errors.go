package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrForbidden means the caller does not own the attempt (or lacks the
	// role) for the operation.
	ErrForbidden = errors.New("not authorized for this attempt")
	// ErrAlreadyCompleted rejects a repeat attempt or a re-submission of a
	// closed attempt. It is a user-facing rejection, not a fault.
	ErrAlreadyCompleted = errors.New("quiz already completed")
	// ErrMalformedTimestamp indicates a stored start/end time that cannot be
	// parsed. Surfaced rather than defaulted: guessing a start time would
	// grant or deny exam time unfairly.
	ErrMalformedTimestamp = errors.New("malformed attempt timestamp")
)

// ExpiredError is returned when a submission arrives past the time limit
// plus the grace window. It carries the elapsed time for diagnostics.
type ExpiredError struct {
	LimitMinutes   int
	ElapsedMinutes float64
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("time limit exceeded: quiz must be submitted within %d minutes, elapsed %.1f minutes",
		e.LimitMinutes, e.ElapsedMinutes)
}
