// Package streak computes workout day-streaks from a user's event history.
//
// The computation is a pure function over ordered timestamps so it can be
// exercised in tests without a store behind it.
package streak

import (
	"sort"
	"time"
)

// Default streak configuration constants.
const (
	defaultGraceDays = 1 // a streak survives until "yesterday" has fully passed
)

// Option applies a configuration option to the calculator.
type Option func(*calc)

// WithGraceDays sets how many calendar days may pass after the last active
// day before the current streak breaks. Zero means the streak must include
// the anchor day itself.
func WithGraceDays(days int) Option {
	return func(c *calc) {
		if days >= 0 {
			c.graceDays = days
		}
	}
}

type calc struct {
	graceDays int
}

// Result holds the computed streak lengths.
type Result struct {
	CurrentDays int
	BestDays    int
}

// Compute derives the current and best day-streaks from workout timestamps.
// Days are bucketed in loc (the user's local timezone, supplied, never
// inferred); now anchors the "today or yesterday" rule. Input order does not
// matter. Runs in O(n log n) on the first call for unsorted input.
func Compute(workouts []time.Time, now time.Time, loc *time.Location, opts ...Option) Result {
	c := &calc{graceDays: defaultGraceDays}
	for _, opt := range opts {
		opt(c)
	}
	if loc == nil {
		loc = time.UTC
	}
	if len(workouts) == 0 {
		return Result{}
	}

	days := make([]int, 0, len(workouts))
	for _, w := range workouts {
		days = append(days, DayOrdinal(w, loc))
	}
	sort.Ints(days)
	days = dedupeSorted(days)

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	// The trailing run only counts as current while the last active day is
	// within the grace window of the anchor day.
	current := 0
	anchor := DayOrdinal(now, loc)
	last := days[len(days)-1]
	if anchor-last <= c.graceDays && last <= anchor {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i] != days[i+1]-1 {
				break
			}
			current++
		}
	}

	return Result{CurrentDays: current, BestDays: best}
}

// DayOrdinal maps t to a contiguous calendar-day index in loc. Consecutive
// local dates always differ by exactly one, across DST transitions too.
func DayOrdinal(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func dedupeSorted(days []int) []int {
	out := days[:1]
	for _, d := range days[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}
