// Package record tracks personal-best jump heights and rolling averages
// for a single user.
package record

import (
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// Default record configuration constants.
const (
	defaultRollingWindow = 7 * 24 * time.Hour
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRollingWindow sets the trailing span used for the rolling average.
func WithRollingWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.window = window
		}
	}
}

// Jump is the minimal applied-event view kept for windowed aggregates.
type Jump struct {
	Height float64
	At     time.Time
	Source model.Source
}

// Result describes the outcome of applying one jump event.
type Result struct {
	Applied           bool // false when the event id was already applied
	IsNewPersonalBest bool // strictly beat the prior maximum
	HadPriorBest      bool // at least one earlier jump existed when applied
}

// State is an immutable copy of the engine's derived values, safe to hand
// across users for leaderboard fan-in.
type State struct {
	UserID      string
	Best        float64
	BestAt      time.Time
	TotalJumps  int
	CameraJumps int
	Jumps       []Jump // chronological
}

// Engine folds a user's jump events into running aggregates. Replaying the
// same event id twice is a no-op; events must be applied in log order.
type Engine struct {
	userID string
	window time.Duration

	seen        map[string]struct{}
	jumps       []Jump
	best        float64
	bestAt      time.Time
	cameraJumps int
}

// New creates a record engine for one user.
func New(userID string, opts ...Option) *Engine {
	e := &Engine{
		userID: userID,
		window: defaultRollingWindow,
		seen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply folds one jump event into the aggregates. A new personal best uses
// strict greater-than: an exact tie with the prior maximum is not a record.
func (e *Engine) Apply(ev model.JumpEvent) Result {
	if _, dup := e.seen[ev.EventID]; dup {
		return Result{}
	}
	e.seen[ev.EventID] = struct{}{}

	res := Result{Applied: true, HadPriorBest: len(e.jumps) > 0}
	if len(e.jumps) == 0 || ev.Height > e.best {
		res.IsNewPersonalBest = true
		e.best = ev.Height
		e.bestAt = ev.CapturedAt
	}
	if ev.Source == model.SourceCamera {
		e.cameraJumps++
	}
	e.jumps = append(e.jumps, Jump{Height: ev.Height, At: ev.CapturedAt, Source: ev.Source})
	return res
}

// Best returns the personal-best height and when it was set.
func (e *Engine) Best() (float64, time.Time) {
	return e.best, e.bestAt
}

// TotalJumps returns how many distinct jump events were applied.
func (e *Engine) TotalJumps() int {
	return len(e.jumps)
}

// CameraJumps returns how many applied jumps came from the camera pipeline.
func (e *Engine) CameraJumps() int {
	return e.cameraJumps
}

// RollingAverage returns the mean height over the trailing window ending at
// the given instant. Zero when the window holds no jumps.
func (e *Engine) RollingAverage(at time.Time) float64 {
	from := at.Add(-e.window)
	sum, n := 0.0, 0
	for i := len(e.jumps) - 1; i >= 0; i-- {
		j := e.jumps[i]
		if j.At.After(at) {
			continue
		}
		if j.At.Before(from) {
			break
		}
		sum += j.Height
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// BestInWindow returns the maximum height recorded in [from, to] and the
// instant it was set. ok is false when the window holds no jumps.
func (e *Engine) BestInWindow(from, to time.Time) (best float64, at time.Time, ok bool) {
	for _, j := range e.jumps {
		if j.At.Before(from) || j.At.After(to) {
			continue
		}
		if !ok || j.Height > best {
			best, at, ok = j.Height, j.At, true
		}
	}
	return best, at, ok
}

// Improvement returns the height gained inside [from, to] relative to the
// personal best as of the window start. With no prior jumps the baseline is
// the first jump inside the window. Never negative.
func (e *Engine) Improvement(from, to time.Time) float64 {
	best, _, ok := e.BestInWindow(from, to)
	if !ok {
		return 0
	}
	baseline, haveBaseline := 0.0, false
	for _, j := range e.jumps {
		if !j.At.Before(from) {
			break
		}
		if !haveBaseline || j.Height > baseline {
			baseline, haveBaseline = j.Height, true
		}
	}
	if !haveBaseline {
		// First jump inside the window anchors the baseline.
		for _, j := range e.jumps {
			if j.At.Before(from) || j.At.After(to) {
				continue
			}
			baseline = j.Height
			break
		}
	}
	if gain := best - baseline; gain > 0 {
		return gain
	}
	return 0
}

// Snapshot copies the derived state for cross-user reads.
func (e *Engine) Snapshot() State {
	jumps := make([]Jump, len(e.jumps))
	copy(jumps, e.jumps)
	return State{
		UserID:      e.userID,
		Best:        e.best,
		BestAt:      e.bestAt,
		TotalJumps:  len(e.jumps),
		CameraJumps: e.cameraJumps,
		Jumps:       jumps,
	}
}

// BestInWindow mirrors Engine.BestInWindow over a snapshotted state.
func (s State) BestInWindow(from, to time.Time) (best float64, at time.Time, ok bool) {
	for _, j := range s.Jumps {
		if j.At.Before(from) || j.At.After(to) {
			continue
		}
		if !ok || j.Height > best {
			best, at, ok = j.Height, j.At, true
		}
	}
	return best, at, ok
}

// Improvement mirrors Engine.Improvement over a snapshotted state.
func (s State) Improvement(from, to time.Time) float64 {
	e := Engine{jumps: s.Jumps}
	return e.Improvement(from, to)
}
