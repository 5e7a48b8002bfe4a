// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults and Load(ctx) to layer
//     file and environment overrides on top.
//   - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory snapshot refresh queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// ConfidenceThreshold rejects camera readings below this confidence.
	ConfidenceThreshold float64 `koanf:"confidence_threshold"`

	// ClockSkewMinutes tolerates device clocks running ahead by this much.
	ClockSkewMinutes int `koanf:"clock_skew_minutes"`

	// RollingWindowDays sizes the rolling average over recent jumps.
	RollingWindowDays int `koanf:"rolling_window_days"`

	// StreakGraceDays allows a streak to survive this many missed days.
	StreakGraceDays int `koanf:"streak_grace_days"`

	// DefaultTimezone buckets workout days for users without an explicit zone.
	DefaultTimezone string `koanf:"default_timezone"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeaderboardWindowDays is the default trailing window for rankings.
	LeaderboardWindowDays int `koanf:"leaderboard_window_days"`

	// Storage selects the event log backend: memory or postgres.
	Storage string `koanf:"storage"`

	// PostgresURL is the connection string when Storage is postgres.
	PostgresURL string `koanf:"postgres_url"`

	// RedisAddr enables the leaderboard cache when non-empty.
	RedisAddr string `koanf:"redis_addr"`
}

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		QueueSize:             10_000,
		WorkerCount:           runtime.NumCPU() * 2,
		ConfidenceThreshold:   0.5,
		ClockSkewMinutes:      5,
		RollingWindowDays:     7,
		StreakGraceDays:       1,
		DefaultTimezone:       "UTC",
		MaxLeaderboardLimit:   100,
		LeaderboardWindowDays: 30,
		Storage:               StorageMemory,
	}
}
