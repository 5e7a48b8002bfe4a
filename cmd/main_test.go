package main

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/airtime-fit/airtime/internal/adapters/http/api"
	app "github.com/airtime-fit/airtime/internal/app"
	"github.com/airtime-fit/airtime/internal/config"
	"github.com/airtime-fit/airtime/pkg/metrics"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("AIRTIME_ADDR", ":8080")
			_ = os.Setenv("AIRTIME_QUEUE_SIZE", "1000")
			_ = os.Setenv("AIRTIME_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("AIRTIME_ADDR")
				_ = os.Unsetenv("AIRTIME_QUEUE_SIZE")
				_ = os.Unsetenv("AIRTIME_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithConfidenceThreshold(0.7),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then routes should register on a fresh mux", func() {
				server := api.NewServer(svc)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				convey.So(func() {
					server.Register(context.Background(), mux)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When postgres storage is selected without a URL", func() {
			_ = os.Setenv("AIRTIME_STORAGE", "postgres")
			defer func() { _ = os.Unsetenv("AIRTIME_STORAGE") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When creating a service with non-positive options", func() {
			convey.Convey("Then defaults should be preserved", func() {
				svc := app.New(
					app.WithWorkerCount(0),
					app.WithQueueSize(0),
					app.WithConfidenceThreshold(-1),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
