package config_test

import (
	"runtime"
	"testing"

	"github.com/airtime-fit/airtime/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.ConfidenceThreshold, convey.ShouldEqual, 0.5)
			convey.So(cfg.ClockSkewMinutes, convey.ShouldEqual, 5)
			convey.So(cfg.RollingWindowDays, convey.ShouldEqual, 7)
			convey.So(cfg.StreakGraceDays, convey.ShouldEqual, 1)
			convey.So(cfg.DefaultTimezone, convey.ShouldEqual, "UTC")
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.LeaderboardWindowDays, convey.ShouldEqual, 30)
			convey.So(cfg.Storage, convey.ShouldEqual, config.StorageMemory)
		})
	})
}
