package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrLowConfidence marks a camera reading below the configured
	// confidence threshold. The reading is dropped, not stored.
	ErrLowConfidence = errors.New("reading confidence below threshold")

	// ErrUnknownUser marks a read for a user with no recorded events.
	ErrUnknownUser = errors.New("unknown user")

	// ErrNotStarted marks a call on a service that was never started.
	ErrNotStarted = errors.New("service not started")
)
