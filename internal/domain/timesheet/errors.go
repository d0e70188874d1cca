package timesheet

import "errors"

// Timesheet domain errors
var (
	// ErrInvalidTransition rejects an action that is not legal from the
	// record's current status. The record is left unchanged.
	ErrInvalidTransition = errors.New("action is not allowed in the current presence state")

	// ErrConflictRetry means an optimistic write lost a race with a
	// concurrent transition; the caller should reload and resubmit.
	ErrConflictRetry = errors.New("presence state changed concurrently, reload and retry")

	// ErrDayRecordNotFound is a query miss, not a failure: "no session
	// recorded for that day".
	ErrDayRecordNotFound = errors.New("no day record found")
)
