package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/airtime-fit/airtime/internal/adapters/eventstore"
	"github.com/airtime-fit/airtime/internal/adapters/http/api"
	"github.com/airtime-fit/airtime/internal/adapters/repository"
	app "github.com/airtime-fit/airtime/internal/app"
	"github.com/airtime-fit/airtime/internal/config"
	"github.com/airtime-fit/airtime/internal/domain/aggregate"
	"github.com/airtime-fit/airtime/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		os.Stderr.WriteString("failed to load timezone: " + err.Error() + "\n")
		return
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithConfidenceThreshold(cfg.ConfidenceThreshold),
		app.WithClockSkewTolerance(time.Duration(cfg.ClockSkewMinutes) * time.Minute),
		app.WithLeaderboardDefaults(cfg.LeaderboardWindowDays, cfg.MaxLeaderboardLimit),
		app.WithAggregation(aggregate.Config{
			Location:      loc,
			RollingWindow: time.Duration(cfg.RollingWindowDays) * 24 * time.Hour,
			GraceDays:     cfg.StreakGraceDays,
		}),
	}

	if cfg.Storage == config.StoragePostgres {
		store, perr := eventstore.NewPostgresStore(ctx, cfg.PostgresURL,
			eventstore.WithPgClockSkewTolerance(time.Duration(cfg.ClockSkewMinutes)*time.Minute),
		)
		if perr != nil {
			os.Stderr.WriteString("failed to open postgres event log: " + perr.Error() + "\n")
			return
		}
		opts = append(opts, app.WithEventStore(store))
		log.Info(ctx, "using postgres event log")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		opts = append(opts, app.WithLeaderboardCache(repository.NewLeaderboardCache(client)))
		log.Info(ctx, "leaderboard cache enabled", logger.String("addr", cfg.RedisAddr))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
