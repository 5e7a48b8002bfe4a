package eventstore

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClockSkewTolerance sets how far an append may lag the user's latest
// accepted event, and how far in the future an event may be dated.
func WithClockSkewTolerance(tolerance time.Duration) Option {
	return func(s *MemoryStore) {
		if tolerance >= 0 {
			s.skew = tolerance
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
