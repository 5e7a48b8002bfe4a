// Package repository holds the derived-state cache: per-user progress
// snapshots rebuilt from the event log, and the windowed leaderboard view
// computed over them. Nothing here is a source of truth.
package repository

import (
	"context"
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
	"github.com/airtime-fit/airtime/internal/domain/record"
)

// Snapshot is one user's cached recomputation result.
type Snapshot struct {
	State      model.UserProgressState
	Record     record.State
	Unlocks    []model.AchievementUnlock // in unlock order
	ComputedAt time.Time

	// ReportedUnlocks holds the rule ids already delivered to a progress
	// read. The "new unlock" baseline advances only when a caller sees the
	// snapshot; background refreshes carry it forward untouched.
	ReportedUnlocks []string
}

// Store provides read/write access to cached snapshots.
type Store interface {
	// Put replaces the user's cached snapshot.
	Put(ctx context.Context, snap Snapshot) error

	// Get returns the user's cached snapshot.
	// Returns ErrNotFound for users never recomputed.
	Get(ctx context.Context, userID string) (Snapshot, error)

	// All returns every cached snapshot, ordered by user id for
	// deterministic fan-in.
	All(ctx context.Context) ([]Snapshot, error)

	// Count returns the number of users tracked in the cache.
	Count(ctx context.Context) int
}
