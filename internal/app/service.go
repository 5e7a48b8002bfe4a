// Package service provides the core analytics service that implements
// the dependencies required by the HTTP API. It owns the event log, the
// derived-snapshot cache, and the refresh worker pool, and exposes the
// read and write operations the transport layer calls into.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airtime-fit/airtime/internal/adapters/eventstore"
	eventqueue "github.com/airtime-fit/airtime/internal/adapters/mq/queue"
	workerpool "github.com/airtime-fit/airtime/internal/adapters/mq/worker"
	"github.com/airtime-fit/airtime/internal/adapters/repository"
	"github.com/airtime-fit/airtime/internal/domain/achievement"
	"github.com/airtime-fit/airtime/internal/domain/aggregate"
	"github.com/airtime-fit/airtime/internal/domain/model"
	"github.com/airtime-fit/airtime/internal/domain/types"
	"github.com/airtime-fit/airtime/pkg/logger"
	"github.com/airtime-fit/airtime/pkg/metrics"
)

// JumpSubmission mirrors the write shape accepted by RecordJump.
type JumpSubmission = types.JumpSubmission

// WorkoutSubmission mirrors the write shape accepted by RecordWorkout.
type WorkoutSubmission = types.WorkoutSubmission

// LeaderboardCache is the shared page cache consulted by leaderboard reads.
// Implemented by repository.LeaderboardCache over Redis.
type LeaderboardCache interface {
	Get(ctx context.Context, windowDays, limit int) ([]types.LeaderboardEntry, bool, error)
	Set(ctx context.Context, windowDays, limit int, entries []types.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

// Service implements the API dependencies for the analytics core.
type Service struct {
	mu sync.RWMutex

	// Core components
	events    eventstore.Store
	snapshots repository.Store
	queue     eventqueue.Queue
	pool      *workerpool.Pool
	cache     LeaderboardCache
	rules     []achievement.Rule

	// Per-user recompute serialization, so a background refresh and a
	// progress read never interleave their read-modify-write of the
	// cached snapshot.
	userLocks sync.Map

	// Configuration
	workerCount         int
	queueSize           int
	confidenceThreshold float64
	clockSkew           time.Duration
	aggCfg              aggregate.Config
	defaultWindowDays   int
	maxLeaderboardLimit int

	// State
	started bool
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEventStore sets the event log backend. Defaults to in-memory.
func WithEventStore(store eventstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.events = store
		}
	}
}

// WithSnapshotStore sets the derived-state cache. Defaults to in-memory.
func WithSnapshotStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.snapshots = store
		}
	}
}

// WithLeaderboardCache enables the shared leaderboard cache.
func WithLeaderboardCache(cache LeaderboardCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithRules replaces the achievement catalog.
func WithRules(rules []achievement.Rule) Option {
	return func(s *Service) {
		if len(rules) > 0 {
			s.rules = rules
		}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithConfidenceThreshold sets the minimum accepted camera confidence.
func WithConfidenceThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 1 {
			s.confidenceThreshold = threshold
		}
	}
}

// WithClockSkewTolerance sets how far ahead device clocks may run. Only
// used when the service constructs its own in-memory event log.
func WithClockSkewTolerance(tolerance time.Duration) Option {
	return func(s *Service) {
		if tolerance >= 0 {
			s.clockSkew = tolerance
		}
	}
}

// WithAggregation sets the recomputation tuning (timezone, windows, grace).
func WithAggregation(cfg aggregate.Config) Option {
	return func(s *Service) {
		s.aggCfg = cfg
	}
}

// WithLeaderboardDefaults sets the default ranking window and the limit cap.
func WithLeaderboardDefaults(windowDays, maxLimit int) Option {
	return func(s *Service) {
		if windowDays > 0 {
			s.defaultWindowDays = windowDays
		}
		if maxLimit > 0 {
			s.maxLeaderboardLimit = maxLimit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Default service tuning.
const (
	defaultQueueSize           = 10_000
	defaultConfidence          = 0.5
	defaultClockSkew           = 5 * time.Minute
	defaultWindowDays          = 30
	defaultMaxLeaderboardLimit = 100
)

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		rules:               achievement.Catalog(),
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           defaultQueueSize,
		confidenceThreshold: defaultConfidence,
		clockSkew:           defaultClockSkew,
		aggCfg:              aggregate.DefaultConfig(),
		defaultWindowDays:   defaultWindowDays,
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.events == nil {
		s.events = eventstore.NewMemoryStore(
			eventstore.WithClockSkewTolerance(s.clockSkew),
		)
		s.logger.Info(ctx, "using in-memory event log")
	}
	if s.snapshots == nil {
		s.snapshots = repository.NewMemoryStore()
	}
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("confidenceThreshold", s.confidenceThreshold),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	if q, ok := s.queue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.events.(interface{ Close() }); ok {
		closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

// RecordJump validates and appends one jump event. Resubmitting an already
// stored event id succeeds without changing any state, reported via the
// duplicate flag. Returns the stored event id.
func (s *Service) RecordJump(ctx context.Context, sub JumpSubmission) (string, bool, error) {
	if !s.isStarted() {
		return "", false, ErrNotStarted
	}

	if sub.Source == model.SourceCamera && sub.Confidence < s.confidenceThreshold {
		metrics.RecordEventRejected("low_confidence")
		return "", false, fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, sub.Confidence, s.confidenceThreshold)
	}

	eventID := sub.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	ev := model.JumpEvent{
		EventID:    eventID,
		UserID:     sub.UserID,
		Height:     sub.Height,
		CapturedAt: sub.CapturedAt,
		Source:     sub.Source,
	}
	if err := s.events.AppendJump(ctx, ev); err != nil {
		return s.classifyAppend(ctx, eventID, err)
	}

	metrics.RecordJumpRecorded()
	s.enqueueRefresh(ctx, sub.UserID)
	// A new jump can change any ranking; stale cached pages must not
	// outlive the write.
	s.invalidateLeaderboard(ctx)
	return eventID, false, nil
}

// RecordWorkout validates and appends one workout-completed event. Returns
// the stored event id and a duplicate flag, same semantics as RecordJump.
func (s *Service) RecordWorkout(ctx context.Context, sub WorkoutSubmission) (string, bool, error) {
	if !s.isStarted() {
		return "", false, ErrNotStarted
	}

	eventID := sub.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	ev := model.WorkoutEvent{
		EventID:         eventID,
		UserID:          sub.UserID,
		PlanID:          sub.PlanID,
		CompletedAt:     sub.CompletedAt,
		DurationSeconds: sub.DurationSeconds,
	}
	if err := s.events.AppendWorkout(ctx, ev); err != nil {
		return s.classifyAppend(ctx, eventID, err)
	}

	metrics.RecordWorkoutRecorded()
	s.enqueueRefresh(ctx, sub.UserID)
	return eventID, false, nil
}

func (s *Service) classifyAppend(ctx context.Context, eventID string, err error) (string, bool, error) {
	switch {
	case errors.Is(err, eventstore.ErrDuplicateEvent):
		// Idempotent resubmission: absorb as a successful no-op.
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event absorbed", logger.String("eventID", eventID))
		return eventID, true, nil
	case errors.Is(err, eventstore.ErrOutOfOrderEvent):
		metrics.RecordEventRejected("out_of_order")
	case errors.Is(err, eventstore.ErrInvalidEvent):
		metrics.RecordEventRejected("invalid")
	default:
		metrics.RecordEventRejected("storage")
	}
	return "", false, err
}

func (s *Service) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn(ctx, "leaderboard cache invalidation failed", logger.Error(err))
	}
}

func (s *Service) enqueueRefresh(ctx context.Context, userID string) {
	if !s.queue.Enqueue(ctx, eventqueue.Task{UserID: userID}) {
		// The snapshot cache is a rebuildable projection; a lost task
		// only delays warmth until the next read.
		s.logger.Warn(ctx, "refresh task dropped", logger.String("userID", userID))
	}
}

// Refresh replays the user's event log and replaces the cached snapshot.
// This is the worker pool's target. It never advances the "new unlock"
// baseline: unlocks stay undelivered until a progress read collects them.
func (s *Service) Refresh(ctx context.Context, userID string) error {
	_, _, err := s.recompute(ctx, userID, false)
	return err
}

// recompute rebuilds one user's snapshot and returns the unlocks not yet
// delivered to a progress read. markReported advances the delivery
// baseline; only the caller-facing read path sets it.
func (s *Service) recompute(ctx context.Context, userID string, markReported bool) (repository.Snapshot, []model.AchievementUnlock, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	events, err := s.events.Replay(ctx, userID, time.Time{})
	if err != nil {
		return repository.Snapshot{}, nil, err
	}
	if len(events) == 0 {
		return repository.Snapshot{}, nil, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	res := aggregate.Compute(userID, events, s.rules, s.now(), s.aggCfg)

	computed := map[string]bool{}
	reported := map[string]bool{}
	var carried []string
	if prev, getErr := s.snapshots.Get(ctx, userID); getErr == nil {
		for _, id := range prev.State.UnlockedAchievements {
			computed[id] = true
		}
		for _, id := range prev.ReportedUnlocks {
			reported[id] = true
		}
		carried = prev.ReportedUnlocks
	}
	var fresh []model.AchievementUnlock
	for _, u := range res.Unlocks {
		if !computed[u.RuleID] {
			// Counted once per unlock, on whichever recomputation first
			// observes it.
			if rule, ok := achievement.RuleByID(s.rules, u.RuleID); ok {
				metrics.RecordUnlock(string(rule.Rarity))
			}
		}
		if !reported[u.RuleID] {
			fresh = append(fresh, u)
		}
	}

	snap := repository.Snapshot{
		State:           res.State,
		Record:          res.Record,
		Unlocks:         res.Unlocks,
		ComputedAt:      s.now(),
		ReportedUnlocks: carried,
	}
	if markReported {
		snap.ReportedUnlocks = res.State.UnlockedAchievements
	}
	if err := s.snapshots.Put(ctx, snap); err != nil {
		return repository.Snapshot{}, nil, err
	}
	metrics.UpdateTrackedUsers(s.snapshots.Count(ctx))
	return snap, fresh, nil
}

func (s *Service) userLock(userID string) *sync.Mutex {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Progress recomputes and returns the user's full progress snapshot.
// NewUnlocks carries achievements that fired since the last cached view.
func (s *Service) Progress(ctx context.Context, userID string) (types.ProgressSnapshot, error) {
	if !s.isStarted() {
		return types.ProgressSnapshot{}, ErrNotStarted
	}

	snap, fresh, err := s.recompute(ctx, userID, true)
	if err != nil {
		return types.ProgressSnapshot{}, err
	}

	view := types.ProgressSnapshot{
		UserID:               snap.State.UserID,
		CurrentStreakDays:    snap.State.CurrentStreakDays,
		BestStreakDays:       snap.State.BestStreakDays,
		PersonalBestHeight:   snap.State.PersonalBestHeight,
		PersonalBestAt:       snap.State.PersonalBestAt,
		RollingAverageHeight: snap.State.RollingAverageHeight,
		RecentImprovement:    snap.State.RecentImprovement,
		TotalJumps:           snap.State.TotalJumps,
		TotalWorkouts:        snap.State.TotalWorkouts,
		UnlockedAchievements: snap.State.UnlockedAchievements,
	}
	for _, u := range fresh {
		view.NewUnlocks = append(view.NewUnlocks, s.unlockView(u))
	}
	return view, nil
}

// Leaderboard ranks users by their best jump inside the trailing window.
// A non-positive windowDays selects the configured default; limit is
// clamped to the configured cap, and zero selects the cap.
func (s *Service) Leaderboard(ctx context.Context, windowDays, limit int) ([]types.LeaderboardEntry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, limit)
	}
	if windowDays <= 0 {
		windowDays = s.defaultWindowDays
	}
	if limit == 0 || limit > s.maxLeaderboardLimit {
		limit = s.maxLeaderboardLimit
	}

	metrics.RecordLeaderboardQuery()

	if s.cache != nil {
		if entries, ok, err := s.cache.Get(ctx, windowDays, limit); err == nil && ok {
			metrics.RecordLeaderboardCacheHit()
			return entries, nil
		}
	}

	if err := s.warmSnapshots(ctx); err != nil {
		return nil, err
	}
	snaps, err := s.snapshots.All(ctx)
	if err != nil {
		return nil, err
	}
	entries := repository.BuildLeaderboard(snaps, repository.TrailingWindow(s.now(), windowDays), limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, windowDays, limit, entries); err != nil {
			s.logger.Warn(ctx, "leaderboard cache write failed", logger.Error(err))
		}
	}
	return entries, nil
}

// warmSnapshots recomputes users present in the log but absent from the
// cache, so rankings never silently miss a user whose refresh task was
// dropped.
func (s *Service) warmSnapshots(ctx context.Context) error {
	users, err := s.events.Users(ctx)
	if err != nil {
		return err
	}
	for _, userID := range users {
		if _, getErr := s.snapshots.Get(ctx, userID); errors.Is(getErr, repository.ErrNotFound) {
			if _, _, rErr := s.recompute(ctx, userID, false); rErr != nil {
				s.logger.Warn(ctx, "snapshot warm-up failed",
					logger.String("userID", userID), logger.Error(rErr))
			}
		}
	}
	return nil
}

// RecentUnlocks returns the user's achievement unlocks, most recent first.
// A positive limit truncates the result.
func (s *Service) RecentUnlocks(ctx context.Context, userID string, limit int) ([]types.Unlock, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}

	snap, _, err := s.recompute(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	unlocks := make([]types.Unlock, 0, len(snap.Unlocks))
	for i := len(snap.Unlocks) - 1; i >= 0; i-- {
		unlocks = append(unlocks, s.unlockView(snap.Unlocks[i]))
		if limit > 0 && len(unlocks) == limit {
			break
		}
	}
	return unlocks, nil
}

// Stats reports service health counters.
func (s *Service) Stats(ctx context.Context) (types.Stats, error) {
	if !s.isStarted() {
		return types.Stats{}, ErrNotStarted
	}

	total, err := s.events.Count(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	return types.Stats{
		TrackedUsers: s.snapshots.Count(ctx),
		TotalEvents:  total,
		QueueDepth:   s.queue.Len(ctx),
		WorkerCount:  s.workerCount,
	}, nil
}

func (s *Service) unlockView(u model.AchievementUnlock) types.Unlock {
	view := types.Unlock{
		UserID:     u.UserID,
		RuleID:     u.RuleID,
		UnlockedAt: u.UnlockedAt,
	}
	if rule, ok := achievement.RuleByID(s.rules, u.RuleID); ok {
		view.Rarity = string(rule.Rarity)
		view.Title = rule.Title
	}
	return view
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
