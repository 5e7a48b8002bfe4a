// Package model contains domain models passed between layers.
package model

import "time"

// Source identifies how a jump height was captured.
type Source string

// Known capture sources.
const (
	SourceCamera Source = "camera"
	SourceManual Source = "manual"
)

// Valid reports whether s is a known capture source.
func (s Source) Valid() bool {
	return s == SourceCamera || s == SourceManual
}

// Event is the common, ordered view over jump and workout events.
// The total order over a user's log is (OccurredAt, ID).
type Event interface {
	ID() string
	User() string
	OccurredAt() time.Time
}

// JumpEvent is one recorded vertical-jump measurement. Immutable once stored.
type JumpEvent struct {
	EventID    string    // unique id for idempotency
	UserID     string    // subject identifier
	Height     float64   // jump height in inches, > 0
	CapturedAt time.Time // measurement timestamp
	Source     Source    // camera or manual entry
}

func (e JumpEvent) ID() string            { return e.EventID }
func (e JumpEvent) User() string          { return e.UserID }
func (e JumpEvent) OccurredAt() time.Time { return e.CapturedAt }

// WorkoutEvent is one recorded completion of a training session. Immutable.
type WorkoutEvent struct {
	EventID         string
	UserID          string
	PlanID          string
	CompletedAt     time.Time
	DurationSeconds int // > 0
}

func (e WorkoutEvent) ID() string            { return e.EventID }
func (e WorkoutEvent) User() string          { return e.UserID }
func (e WorkoutEvent) OccurredAt() time.Time { return e.CompletedAt }

// Before reports whether a orders strictly before b under (OccurredAt, ID).
func Before(a, b Event) bool {
	at, bt := a.OccurredAt(), b.OccurredAt()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.ID() < b.ID()
}
