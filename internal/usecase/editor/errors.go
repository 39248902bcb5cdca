// Package editor implements the admin article editor: a typed form buffer,
// first-error validation and a submit state machine that refuses double
// submission and invalidates dependent queries after every write.
package editor

import "errors"

var (
	// ErrSubmitInFlight is returned when a submit or buffer change arrives
	// while a submission is still running.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrDuplicateSubmission is returned when an idempotency token is reused
	// before its first submission finished.
	ErrDuplicateSubmission = errors.New("duplicate submission")
)
