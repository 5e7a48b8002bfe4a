package record_test

import (
	"fmt"
	"testing"
	"time"

	model "github.com/airtime-fit/airtime/internal/domain/model"
	record "github.com/airtime-fit/airtime/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func jumpAt(id string, height float64, at time.Time) model.JumpEvent {
	return model.JumpEvent{
		EventID:    id,
		UserID:     "u1",
		Height:     height,
		CapturedAt: at,
		Source:     model.SourceCamera,
	}
}

func TestApply(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	Convey("Given a fresh record engine", t, func() {
		e := record.New("u1")

		Convey("When the first jump is applied", func() {
			res := e.Apply(jumpAt("j1", 27.5, base))

			Convey("Then it is a personal best with no prior history", func() {
				So(res.Applied, ShouldBeTrue)
				So(res.IsNewPersonalBest, ShouldBeTrue)
				So(res.HadPriorBest, ShouldBeFalse)
			})
		})

		Convey("When a higher jump follows", func() {
			e.Apply(jumpAt("j1", 27.5, base))
			res := e.Apply(jumpAt("j2", 28.1, base.Add(time.Hour)))

			Convey("Then it is a new record over prior history", func() {
				So(res.IsNewPersonalBest, ShouldBeTrue)
				So(res.HadPriorBest, ShouldBeTrue)
				best, at := e.Best()
				So(best, ShouldEqual, 28.1)
				So(at, ShouldEqual, base.Add(time.Hour))
			})
		})

		Convey("When a jump exactly ties the maximum", func() {
			e.Apply(jumpAt("j1", 27.5, base))
			res := e.Apply(jumpAt("j2", 27.5, base.Add(time.Hour)))

			Convey("Then the tie is not a new record and the original instant stands", func() {
				So(res.IsNewPersonalBest, ShouldBeFalse)
				_, at := e.Best()
				So(at, ShouldEqual, base)
			})
		})

		Convey("When the same event id is replayed", func() {
			first := e.Apply(jumpAt("j1", 27.5, base))
			second := e.Apply(jumpAt("j1", 27.5, base))

			Convey("Then the replay is a no-op", func() {
				So(first.Applied, ShouldBeTrue)
				So(second.Applied, ShouldBeFalse)
				So(e.TotalJumps(), ShouldEqual, 1)
			})

			Convey("And the rolling average is not double-counted", func() {
				e.Apply(jumpAt("j2", 30.0, base.Add(time.Hour)))
				avg := e.RollingAverage(base.Add(2 * time.Hour))
				So(avg, ShouldAlmostEqual, (27.5+30.0)/2)
			})
		})
	})
}

func TestPersonalBestMonotonicity(t *testing.T) {
	Convey("Given an arbitrary jump sequence", t, func() {
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		heights := []float64{25, 27.5, 26, 27.5, 29, 24, 29.01}
		e := record.New("u1")

		Convey("Then the personal best never decreases across prefixes", func() {
			prev := 0.0
			for i, h := range heights {
				e.Apply(jumpAt(fmt.Sprintf("j%d", i), h, base.Add(time.Duration(i)*time.Hour)))
				best, _ := e.Best()
				So(best, ShouldBeGreaterThanOrEqualTo, prev)
				prev = best
			}
			So(prev, ShouldEqual, 29.01)
		})
	})
}

func TestRollingAverage(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	Convey("Given jumps spread over ten days, applied in log order", t, func() {
		e := record.New("u1")
		for i := 9; i >= 0; i-- {
			e.Apply(jumpAt(fmt.Sprintf("j%d", i), 20+float64(i), base.AddDate(0, 0, -i)))
		}

		Convey("Then the default window averages only the trailing seven days", func() {
			// The window is inclusive at both ends: heights 20..27.
			So(e.RollingAverage(base), ShouldAlmostEqual, 23.5)
		})

		Convey("And a narrower window tightens the view", func() {
			n := record.New("u1", record.WithRollingWindow(48*time.Hour))
			for i := 9; i >= 0; i-- {
				n.Apply(jumpAt(fmt.Sprintf("j%d", i), 20+float64(i), base.AddDate(0, 0, -i)))
			}
			So(n.RollingAverage(base), ShouldAlmostEqual, (20.0+21.0+22.0)/3)
		})

		Convey("And an empty window yields zero", func() {
			So(e.RollingAverage(base.AddDate(0, 0, 30)), ShouldEqual, 0)
		})
	})
}

func TestWindowedAggregates(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a month of jumps climbing from 24 to 30 inches", t, func() {
		e := record.New("u1")
		e.Apply(jumpAt("old", 24, base.AddDate(0, 0, -40)))
		e.Apply(jumpAt("j1", 26, base.AddDate(0, 0, 5)))
		e.Apply(jumpAt("j2", 30, base.AddDate(0, 0, 20)))

		Convey("When querying the best inside the month", func() {
			best, at, ok := e.BestInWindow(base, base.AddDate(0, 0, 30))

			Convey("Then the windowed best ignores older jumps", func() {
				So(ok, ShouldBeTrue)
				So(best, ShouldEqual, 30.0)
				So(at, ShouldEqual, base.AddDate(0, 0, 20))
			})
		})

		Convey("When measuring improvement against the pre-window best", func() {
			gain := e.Improvement(base, base.AddDate(0, 0, 30))

			Convey("Then the baseline is the 24 inch personal best", func() {
				So(gain, ShouldAlmostEqual, 6.0)
			})
		})

		Convey("When the user had no jumps before the window", func() {
			n := record.New("u2")
			n.Apply(jumpAt("a", 26, base.AddDate(0, 0, 5)))
			n.Apply(jumpAt("b", 30, base.AddDate(0, 0, 20)))

			Convey("Then the first in-window jump anchors the baseline", func() {
				So(n.Improvement(base, base.AddDate(0, 0, 30)), ShouldAlmostEqual, 4.0)
			})
		})

		Convey("When performance regressed inside the window", func() {
			n := record.New("u3")
			n.Apply(jumpAt("a", 30, base.AddDate(0, 0, -5)))
			n.Apply(jumpAt("b", 26, base.AddDate(0, 0, 5)))

			Convey("Then improvement clamps at zero", func() {
				So(n.Improvement(base, base.AddDate(0, 0, 30)), ShouldEqual, 0)
			})
		})
	})
}

func TestSnapshot(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	Convey("Given an engine with applied jumps", t, func() {
		e := record.New("u1")
		e.Apply(jumpAt("j1", 27.5, base))
		e.Apply(jumpAt("j2", 29, base.Add(time.Hour)))
		snap := e.Snapshot()

		Convey("Then the snapshot mirrors the derived values", func() {
			So(snap.UserID, ShouldEqual, "u1")
			So(snap.Best, ShouldEqual, 29.0)
			So(snap.TotalJumps, ShouldEqual, 2)
			So(snap.CameraJumps, ShouldEqual, 2)
		})

		Convey("Then windowed reads agree between engine and snapshot", func() {
			from, to := base.Add(-time.Hour), base.Add(2*time.Hour)
			eb, _, _ := e.BestInWindow(from, to)
			sb, _, _ := snap.BestInWindow(from, to)
			So(sb, ShouldEqual, eb)
			So(snap.Improvement(from, to), ShouldEqual, e.Improvement(from, to))
		})

		Convey("Then later writes do not leak into the snapshot", func() {
			e.Apply(jumpAt("j3", 31, base.Add(2*time.Hour)))
			So(snap.Best, ShouldEqual, 29.0)
			So(len(snap.Jumps), ShouldEqual, 2)
		})
	})
}
