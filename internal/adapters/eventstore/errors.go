package eventstore

import "errors"

// Sentinel kinds for event log errors.
var (
	// ErrDuplicateEvent marks a reused event id. Callers treat it as a
	// no-op: resubmitting the same event must be idempotent.
	ErrDuplicateEvent = errors.New("duplicate event id")

	// ErrOutOfOrderEvent marks an append that predates the user's latest
	// accepted event by more than the clock-skew tolerance. Surfaced
	// rather than silently reordered so streak math stays correct under
	// concurrent writers.
	ErrOutOfOrderEvent = errors.New("event out of order beyond clock skew tolerance")

	// ErrInvalidEvent marks an event that failed boundary validation.
	ErrInvalidEvent = errors.New("invalid event")
)
