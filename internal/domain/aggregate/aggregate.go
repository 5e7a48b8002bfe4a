// Package aggregate folds a user's validated event log into the derived
// progress snapshot. The fold is pure: same log, same clock, same output,
// so a canceled recomputation has nothing to unwind.
package aggregate

import (
	"time"

	"github.com/airtime-fit/airtime/internal/domain/achievement"
	"github.com/airtime-fit/airtime/internal/domain/model"
	"github.com/airtime-fit/airtime/internal/domain/record"
	"github.com/airtime-fit/airtime/internal/domain/streak"
)

// Default aggregation constants.
const (
	defaultImprovementWindow = 30 * 24 * time.Hour
)

// Config carries the per-deployment tuning for a recomputation.
type Config struct {
	// Location is the user's local timezone for day bucketing.
	Location *time.Location
	// RollingWindow is the trailing span for the average height.
	RollingWindow time.Duration
	// ImprovementWindow is the trailing span for the recent-gain stat.
	ImprovementWindow time.Duration
	// GraceDays is the streak grace policy.
	GraceDays int
}

// DefaultConfig returns the shipped aggregation tuning.
func DefaultConfig() Config {
	return Config{
		Location:          time.UTC,
		RollingWindow:     0, // record engine default
		ImprovementWindow: defaultImprovementWindow,
		GraceDays:         1,
	}
}

// Result is the output of one recomputation.
type Result struct {
	State   model.UserProgressState
	Record  record.State
	Unlocks []model.AchievementUnlock // in unlock order
}

// Compute replays events (already ordered by the store) through the streak,
// record, and achievement engines and returns the snapshot as of now.
func Compute(userID string, events []model.Event, rules []achievement.Rule, now time.Time, cfg Config) Result {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	improvementWindow := cfg.ImprovementWindow
	if improvementWindow <= 0 {
		improvementWindow = defaultImprovementWindow
	}

	var recOpts []record.Option
	if cfg.RollingWindow > 0 {
		recOpts = append(recOpts, record.WithRollingWindow(cfg.RollingWindow))
	}
	rec := record.New(userID, recOpts...)
	ach := achievement.NewEngine(userID, rules)

	var (
		workouts    []time.Time
		workoutSeen = make(map[string]struct{})
		// Incremental trailing run of consecutive workout days, so per-event
		// streak state is O(1) instead of a full recompute per event.
		lastDay = -1
		runLen  = 0
		bestRun = 0
	)

	for _, ev := range events {
		trig := achievement.Trigger{Event: ev}

		switch e := ev.(type) {
		case model.JumpEvent:
			res := rec.Apply(e)
			if !res.Applied {
				continue
			}
			trig.IsNewPersonalBest = res.IsNewPersonalBest
			trig.HadPriorBest = res.HadPriorBest
		case model.WorkoutEvent:
			if _, dup := workoutSeen[e.EventID]; dup {
				continue
			}
			workoutSeen[e.EventID] = struct{}{}
			workouts = append(workouts, e.CompletedAt)
			d := streak.DayOrdinal(e.CompletedAt, loc)
			switch {
			case d == lastDay:
				// same day, run unchanged
			case lastDay >= 0 && d == lastDay+1:
				runLen++
			default:
				runLen = 1
			}
			lastDay = d
			if runLen > bestRun {
				bestRun = runLen
			}
		default:
			continue
		}

		at := ev.OccurredAt()
		state := snapshotAt(userID, rec, at, improvementWindow, cfg.GraceDays, lastDay, runLen, bestRun, loc, len(workouts))
		state.UnlockedAchievements = ach.UnlockedIDs()
		ach.Evaluate(state, trig)
	}

	final := model.UserProgressState{UserID: userID}
	if len(events) > 0 {
		best, bestAt := rec.Best()
		st := streak.Compute(workouts, now, loc, streak.WithGraceDays(cfg.GraceDays))
		final = model.UserProgressState{
			UserID:               userID,
			CurrentStreakDays:    st.CurrentDays,
			BestStreakDays:       st.BestDays,
			PersonalBestHeight:   best,
			PersonalBestAt:       bestAt,
			RollingAverageHeight: rec.RollingAverage(now),
			RecentImprovement:    rec.Improvement(now.Add(-improvementWindow), now),
			TotalJumps:           rec.TotalJumps(),
			TotalWorkouts:        len(workouts),
			CameraJumps:          rec.CameraJumps(),
		}
	}
	final.UnlockedAchievements = ach.UnlockedIDs()

	return Result{
		State:   final,
		Record:  rec.Snapshot(),
		Unlocks: ach.Unlocks(),
	}
}

// snapshotAt builds the progress state as of a triggering event, anchoring
// streak and window math at the event's own timestamp so unlock decisions
// replay identically regardless of when the recomputation runs.
func snapshotAt(userID string, rec *record.Engine, at time.Time, improvementWindow time.Duration, graceDays, lastDay, runLen, bestRun int, loc *time.Location, totalWorkouts int) model.UserProgressState {
	best, bestAt := rec.Best()
	current := 0
	if lastDay >= 0 {
		if delta := streak.DayOrdinal(at, loc) - lastDay; delta >= 0 && delta <= graceDays {
			current = runLen
		}
	}
	return model.UserProgressState{
		UserID:               userID,
		CurrentStreakDays:    current,
		BestStreakDays:       bestRun,
		PersonalBestHeight:   best,
		PersonalBestAt:       bestAt,
		RollingAverageHeight: rec.RollingAverage(at),
		RecentImprovement:    rec.Improvement(at.Add(-improvementWindow), at),
		TotalJumps:           rec.TotalJumps(),
		TotalWorkouts:        totalWorkouts,
		CameraJumps:          rec.CameraJumps(),
	}
}
