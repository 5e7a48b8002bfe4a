package model

import "time"

// UserProgressState is the derived per-user projection consumed by the
// presentation layer. It is rebuilt from the event log and never the
// source of truth.
type UserProgressState struct {
	UserID               string
	CurrentStreakDays    int
	BestStreakDays       int
	PersonalBestHeight   float64
	PersonalBestAt       time.Time
	RollingAverageHeight float64
	RecentImprovement    float64 // height gained over the trailing improvement window
	TotalJumps           int
	TotalWorkouts        int
	CameraJumps          int
	UnlockedAchievements []string // rule ids, ascending
}

// AchievementUnlock records the one-time Locked -> Unlocked transition of a
// rule for a user. At most one unlock exists per (UserID, RuleID).
type AchievementUnlock struct {
	UserID     string
	RuleID     string
	UnlockedAt time.Time // the triggering event's timestamp
}
