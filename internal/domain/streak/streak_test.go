package streak_test

import (
	"testing"
	"time"

	streak "github.com/airtime-fit/airtime/internal/domain/streak"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, d-1)
}

func TestComputeStreaks(t *testing.T) {
	Convey("Given workouts on days 1,2,3 and 5 with day 4 missing", t, func() {
		workouts := []time.Time{day(1), day(2), day(3), day(5)}

		Convey("When anchored at day 5", func() {
			res := streak.Compute(workouts, day(5), time.UTC)

			Convey("Then the current streak restarts at 1 and the best run is 3", func() {
				So(res.CurrentDays, ShouldEqual, 1)
				So(res.BestDays, ShouldEqual, 3)
			})
		})

		Convey("When anchored at day 6, within one day's grace", func() {
			res := streak.Compute(workouts, day(6), time.UTC)

			Convey("Then the streak survives", func() {
				So(res.CurrentDays, ShouldEqual, 1)
			})
		})

		Convey("When anchored at day 7, past the grace window", func() {
			res := streak.Compute(workouts, day(7), time.UTC)

			Convey("Then the current streak is broken but the best run remains", func() {
				So(res.CurrentDays, ShouldEqual, 0)
				So(res.BestDays, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an unbroken run ending today", t, func() {
		workouts := []time.Time{day(3), day(4), day(5), day(6), day(7)}
		res := streak.Compute(workouts, day(7), time.UTC)

		Convey("Then current and best agree", func() {
			So(res.CurrentDays, ShouldEqual, 5)
			So(res.BestDays, ShouldEqual, 5)
		})
	})

	Convey("Given several workouts on the same day", t, func() {
		workouts := []time.Time{
			day(1),
			day(1).Add(2 * time.Hour),
			day(2),
			day(2).Add(30 * time.Minute),
		}
		res := streak.Compute(workouts, day(2), time.UTC)

		Convey("Then each day counts once", func() {
			So(res.CurrentDays, ShouldEqual, 2)
			So(res.BestDays, ShouldEqual, 2)
		})
	})

	Convey("Given no workouts", t, func() {
		res := streak.Compute(nil, day(1), time.UTC)

		Convey("Then both streaks are zero", func() {
			So(res.CurrentDays, ShouldEqual, 0)
			So(res.BestDays, ShouldEqual, 0)
		})
	})

	Convey("Given a zero grace policy", t, func() {
		workouts := []time.Time{day(1), day(2)}

		Convey("When the anchor is the day after the last workout", func() {
			res := streak.Compute(workouts, day(3), time.UTC, streak.WithGraceDays(0))

			Convey("Then the streak is already broken", func() {
				So(res.CurrentDays, ShouldEqual, 0)
				So(res.BestDays, ShouldEqual, 2)
			})
		})

		Convey("When the anchor is the last workout day", func() {
			res := streak.Compute(workouts, day(2), time.UTC, streak.WithGraceDays(0))

			Convey("Then the streak holds", func() {
				So(res.CurrentDays, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a user in a non-UTC timezone", t, func() {
		// 23:30 local on one day and 00:30 local the next are consecutive
		// days even though they are an hour apart.
		loc := time.FixedZone("UTC+5", 5*3600)
		w1 := time.Date(2026, 3, 1, 23, 30, 0, 0, loc)
		w2 := time.Date(2026, 3, 2, 0, 30, 0, 0, loc)
		res := streak.Compute([]time.Time{w1, w2}, w2, loc)

		Convey("Then day bucketing follows the local calendar", func() {
			So(res.CurrentDays, ShouldEqual, 2)
			So(res.BestDays, ShouldEqual, 2)
		})

		Convey("And bucketing the same instants in UTC lands on one day", func() {
			res := streak.Compute([]time.Time{w1, w2}, w2, time.UTC)
			So(res.BestDays, ShouldEqual, 1)
		})
	})
}

func TestDayOrdinal(t *testing.T) {
	Convey("Given consecutive local dates", t, func() {
		loc := time.UTC

		Convey("Then ordinals differ by exactly one", func() {
			a := streak.DayOrdinal(day(1), loc)
			b := streak.DayOrdinal(day(2), loc)
			So(b-a, ShouldEqual, 1)
		})

		Convey("Then times within a day share an ordinal", func() {
			a := streak.DayOrdinal(day(1), loc)
			b := streak.DayOrdinal(day(1).Add(11*time.Hour), loc)
			So(a, ShouldEqual, b)
		})
	})
}
