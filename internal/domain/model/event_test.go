package model_test

import (
	"testing"
	"time"

	model "github.com/airtime-fit/airtime/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSource(t *testing.T) {
	Convey("Given capture sources", t, func() {
		Convey("Then the known sources should be valid", func() {
			So(model.SourceCamera.Valid(), ShouldBeTrue)
			So(model.SourceManual.Valid(), ShouldBeTrue)
		})

		Convey("Then unknown sources should be invalid", func() {
			So(model.Source("").Valid(), ShouldBeFalse)
			So(model.Source("sonar").Valid(), ShouldBeFalse)
		})
	})
}

func TestEventOrdering(t *testing.T) {
	Convey("Given events with distinct timestamps", t, func() {
		t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		a := model.JumpEvent{EventID: "b", UserID: "u1", Height: 28.5, CapturedAt: t0}
		b := model.WorkoutEvent{EventID: "a", UserID: "u1", PlanID: "p1", CompletedAt: t0.Add(time.Minute), DurationSeconds: 1200}

		Convey("Then the earlier timestamp orders first regardless of id", func() {
			So(model.Before(a, b), ShouldBeTrue)
			So(model.Before(b, a), ShouldBeFalse)
		})
	})

	Convey("Given events sharing a timestamp", t, func() {
		t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		a := model.JumpEvent{EventID: "evt-1", UserID: "u1", Height: 27.0, CapturedAt: t0}
		b := model.JumpEvent{EventID: "evt-2", UserID: "u1", Height: 27.5, CapturedAt: t0}

		Convey("Then the lower event id breaks the tie", func() {
			So(model.Before(a, b), ShouldBeTrue)
			So(model.Before(b, a), ShouldBeFalse)
		})

		Convey("And an event never orders before itself", func() {
			So(model.Before(a, a), ShouldBeFalse)
		})
	})
}

func TestEventAccessors(t *testing.T) {
	Convey("Given a jump and a workout event", t, func() {
		at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
		jump := model.JumpEvent{EventID: "j1", UserID: "u9", Height: 30.2, CapturedAt: at, Source: model.SourceCamera}
		workout := model.WorkoutEvent{EventID: "w1", UserID: "u9", PlanID: "explosive-power", CompletedAt: at, DurationSeconds: 1800}

		Convey("Then both satisfy the Event view consistently", func() {
			So(jump.ID(), ShouldEqual, "j1")
			So(jump.User(), ShouldEqual, "u9")
			So(jump.OccurredAt(), ShouldEqual, at)
			So(workout.ID(), ShouldEqual, "w1")
			So(workout.User(), ShouldEqual, "u9")
			So(workout.OccurredAt(), ShouldEqual, at)
		})
	})
}
