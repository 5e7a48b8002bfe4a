package repository

import (
	"sort"
	"time"

	"github.com/airtime-fit/airtime/internal/domain/types"
)

// Window is the trailing time span a leaderboard query ranks over.
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingWindow builds a window of the given number of days ending at now.
func TrailingWindow(now time.Time, days int) Window {
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

// BuildLeaderboard ranks users by best height inside the window, descending.
// Ties break toward the earlier personal best (rewarding the first
// achiever), then user id ascending so the order is strict and total. Ranks
// are dense: 1..n with no gaps and no shared ranks. Users with no jump in
// the window are excluded. The view is recomputed from snapshots on every
// call and never stored, so it cannot drift from source state.
func BuildLeaderboard(snaps []Snapshot, w Window, limit int) []types.LeaderboardEntry {
	type candidate struct {
		userID      string
		best        float64
		bestAt      time.Time // the user's all-time personal best instant
		improvement float64
	}

	var ranked []candidate
	for _, s := range snaps {
		best, _, ok := s.Record.BestInWindow(w.From, w.To)
		if !ok {
			continue
		}
		ranked = append(ranked, candidate{
			userID:      s.State.UserID,
			best:        best,
			bestAt:      s.Record.BestAt,
			improvement: s.Record.Improvement(w.From, w.To),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.best != b.best {
			return a.best > b.best
		}
		if !a.bestAt.Equal(b.bestAt) {
			return a.bestAt.Before(b.bestAt)
		}
		return a.userID < b.userID
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	out := make([]types.LeaderboardEntry, len(ranked))
	for i, c := range ranked {
		out[i] = types.LeaderboardEntry{
			Rank:                i + 1,
			UserID:              c.userID,
			BestHeightInWindow:  c.best,
			ImprovementInWindow: c.improvement,
			PersonalBestAt:      c.bestAt,
		}
	}
	return out
}
