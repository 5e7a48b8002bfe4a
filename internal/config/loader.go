package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if AIRTIME_CONFIG is set
//  3. env (prefix AIRTIME_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("AIRTIME_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: AIRTIME_ADDR, AIRTIME_QUEUE_SIZE, ...
	// Map env keys like AIRTIME_QUEUE_SIZE -> queue_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AIRTIME_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "airtime_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case cfg.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence_threshold must be in [0, 1]", ErrInvalidConfig)
	case cfg.ClockSkewMinutes < 0:
		return fmt.Errorf("%w: clock_skew_minutes must not be negative", ErrInvalidConfig)
	case cfg.RollingWindowDays <= 0:
		return fmt.Errorf("%w: rolling_window_days must be positive", ErrInvalidConfig)
	case cfg.StreakGraceDays < 0:
		return fmt.Errorf("%w: streak_grace_days must not be negative", ErrInvalidConfig)
	case cfg.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case cfg.LeaderboardWindowDays <= 0:
		return fmt.Errorf("%w: leaderboard_window_days must be positive", ErrInvalidConfig)
	}

	if cfg.Storage != StorageMemory && cfg.Storage != StoragePostgres {
		return fmt.Errorf("%w: storage must be %q or %q", ErrInvalidConfig, StorageMemory, StoragePostgres)
	}
	if cfg.Storage == StoragePostgres && cfg.PostgresURL == "" {
		return fmt.Errorf("%w: postgres_url required for postgres storage", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return fmt.Errorf("%w: unknown default_timezone %q", ErrInvalidConfig, cfg.DefaultTimezone)
	}
	return nil
}
