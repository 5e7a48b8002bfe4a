// Package types contains the request and read-side shapes shared between
// the service and the HTTP layer.
package types

import (
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// JumpSubmission is one measured jump arriving at the write boundary.
type JumpSubmission struct {
	EventID    string // minted when empty
	UserID     string
	Height     float64
	CapturedAt time.Time
	Confidence float64 // camera estimator confidence, [0, 1]
	Source     model.Source
}

// WorkoutSubmission is one completed workout arriving at the write boundary.
type WorkoutSubmission struct {
	EventID         string // minted when empty
	UserID          string
	PlanID          string
	CompletedAt     time.Time
	DurationSeconds int
}

// ProgressSnapshot is the per-user progress view served to clients.
type ProgressSnapshot struct {
	UserID               string    `json:"user_id"`
	CurrentStreakDays    int       `json:"current_streak_days"`
	BestStreakDays       int       `json:"best_streak_days"`
	PersonalBestHeight   float64   `json:"personal_best_height"`
	PersonalBestAt       time.Time `json:"personal_best_at"`
	RollingAverageHeight float64   `json:"rolling_average_height"`
	RecentImprovement    float64   `json:"recent_improvement"`
	TotalJumps           int       `json:"total_jumps"`
	TotalWorkouts        int       `json:"total_workouts"`
	UnlockedAchievements []string  `json:"unlocked_achievements"`
	NewUnlocks           []Unlock  `json:"new_unlocks,omitempty"`
}

// LeaderboardEntry is one ranked row over the queried window.
type LeaderboardEntry struct {
	Rank                int       `json:"rank"`
	UserID              string    `json:"user_id"`
	BestHeightInWindow  float64   `json:"best_height_in_window"`
	ImprovementInWindow float64   `json:"improvement_in_window"`
	PersonalBestAt      time.Time `json:"personal_best_at"`
}

// Stats summarizes service health counters.
type Stats struct {
	TrackedUsers int `json:"tracked_users"`
	TotalEvents  int `json:"total_events"`
	QueueDepth   int `json:"queue_depth"`
	WorkerCount  int `json:"worker_count"`
}

// Unlock is one achievement unlock as served to clients.
type Unlock struct {
	UserID     string    `json:"user_id"`
	RuleID     string    `json:"rule_id"`
	Rarity     string    `json:"rarity"`
	Title      string    `json:"title"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
