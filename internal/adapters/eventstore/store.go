// Package eventstore defines the append-only event log interface and its
// validation rules. The log is the single source of truth; everything else
// in the system is a rebuildable projection of it.
package eventstore

import (
	"context"
	"strings"
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultClockSkewTolerance = 5 * time.Minute
)

// Store provides append and replay access to the per-user event log.
type Store interface {
	// AppendJump adds a validated jump event to the user's partition.
	// Fails with ErrDuplicateEvent on a reused event id and with
	// ErrOutOfOrderEvent when the event predates the user's latest
	// accepted event by more than the clock-skew tolerance.
	AppendJump(ctx context.Context, ev model.JumpEvent) error

	// AppendWorkout adds a validated workout event, same rules as AppendJump.
	AppendWorkout(ctx context.Context, ev model.WorkoutEvent) error

	// Replay returns the user's event slice ordered by
	// (occurred_at, event_id), restricted to events at or after since; a
	// zero since replays the full log. Restartable: same log, same
	// sequence.
	Replay(ctx context.Context, userID string, since time.Time) ([]model.Event, error)

	// Users lists every user id with at least one event.
	Users(ctx context.Context) ([]string, error)

	// Count returns the total number of stored events.
	Count(ctx context.Context) (int, error)
}

// validateJump enforces the boundary invariants so no engine ever observes
// an inconsistent event.
func validateJump(ev model.JumpEvent, now time.Time, skew time.Duration) error {
	switch {
	case strings.TrimSpace(ev.EventID) == "":
		return ErrInvalidEvent
	case strings.TrimSpace(ev.UserID) == "":
		return ErrInvalidEvent
	case ev.Height <= 0:
		return ErrInvalidEvent
	case ev.CapturedAt.IsZero():
		return ErrInvalidEvent
	case ev.CapturedAt.After(now.Add(skew)):
		return ErrInvalidEvent // future-dated beyond tolerance
	case !ev.Source.Valid():
		return ErrInvalidEvent
	}
	return nil
}

func validateWorkout(ev model.WorkoutEvent, now time.Time, skew time.Duration) error {
	switch {
	case strings.TrimSpace(ev.EventID) == "":
		return ErrInvalidEvent
	case strings.TrimSpace(ev.UserID) == "":
		return ErrInvalidEvent
	case strings.TrimSpace(ev.PlanID) == "":
		return ErrInvalidEvent
	case ev.DurationSeconds <= 0:
		return ErrInvalidEvent
	case ev.CompletedAt.IsZero():
		return ErrInvalidEvent
	case ev.CompletedAt.After(now.Add(skew)):
		return ErrInvalidEvent
	}
	return nil
}
