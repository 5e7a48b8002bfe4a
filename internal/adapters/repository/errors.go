package repository

import "errors"

// Sentinel kinds for derived-state errors.
var (
	ErrNotFound     = errors.New("user snapshot not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
