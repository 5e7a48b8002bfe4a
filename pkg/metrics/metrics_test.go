package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})

			Convey("Then its metrics should be registered", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			So(RecordJumpRecorded, ShouldNotPanic)
			So(RecordWorkoutRecorded, ShouldNotPanic)
			So(RecordEventDuplicate, ShouldNotPanic)
			So(func() { RecordEventRejected("out_of_order") }, ShouldNotPanic)
		})

		Convey("When recording derived-state metrics", func() {
			So(RecordSnapshotRefreshed, ShouldNotPanic)
			So(func() { RecordRefreshDuration(12.5) }, ShouldNotPanic)
			So(func() { RecordUnlock("legendary") }, ShouldNotPanic)
			So(func() { UpdateTrackedUsers(7) }, ShouldNotPanic)
		})

		Convey("When recording leaderboard metrics", func() {
			So(RecordLeaderboardQuery, ShouldNotPanic)
			So(RecordLeaderboardCacheHit, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() { UpdateQueueSize(3) }, ShouldNotPanic)
			So(func() { UpdateQueueCapacity(100) }, ShouldNotPanic)
			So(func() { RecordQueueEnqueueError("queue_full") }, ShouldNotPanic)
			So(func() { UpdateWorkerCount(4) }, ShouldNotPanic)
			So(RecordWorkerError, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() { RecordHTTPRequest("/jumps", "POST", "201") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("/jumps", "POST", "201", 4.2) }, ShouldNotPanic)
		})

		Convey("When gathering the global registry", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
		})
	})
}
