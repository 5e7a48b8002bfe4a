package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

const (
	kindJump    = "jump"
	kindWorkout = "workout"

	// Postgres unique_violation; a duplicate event id maps to the
	// idempotent ErrDuplicateEvent.
	pgUniqueViolation = "23505"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS events (
	event_id         TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	kind             TEXT NOT NULL,
	occurred_at      TIMESTAMPTZ NOT NULL,
	height           DOUBLE PRECISION,
	source           TEXT,
	plan_id          TEXT,
	duration_seconds INTEGER
);
CREATE INDEX IF NOT EXISTS events_user_order ON events (user_id, occurred_at, event_id);
`

// PgOption applies a configuration option to the PostgresStore.
type PgOption func(*PostgresStore)

// WithPgClockSkewTolerance sets the skew tolerance for the Postgres store.
func WithPgClockSkewTolerance(tolerance time.Duration) PgOption {
	return func(s *PostgresStore) {
		if tolerance >= 0 {
			s.skew = tolerance
		}
	}
}

// WithPgClock overrides the wall clock, for tests.
func WithPgClock(now func() time.Time) PgOption {
	return func(s *PostgresStore) {
		if now != nil {
			s.now = now
		}
	}
}

// PostgresStore implements Store on a pgx connection pool. Per-user append
// serialization uses a transaction-scoped advisory lock keyed on the user
// id, so concurrent captures for one user never interleave.
type PostgresStore struct {
	pool *pgxpool.Pool
	skew time.Duration
	now  func() time.Time
}

// NewPostgresStore connects, applies the schema, and returns the store.
func NewPostgresStore(ctx context.Context, url string, opts ...PgOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{
		pool: pool,
		skew: defaultClockSkewTolerance,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// AppendJump validates and appends one jump event.
func (s *PostgresStore) AppendJump(ctx context.Context, ev model.JumpEvent) error {
	if err := validateJump(ev, s.now(), s.skew); err != nil {
		return err
	}
	return s.append(ctx, ev, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO events (event_id, user_id, kind, occurred_at, height, source)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.EventID, ev.UserID, kindJump, ev.CapturedAt, ev.Height, string(ev.Source))
		return err
	})
}

// AppendWorkout validates and appends one workout event.
func (s *PostgresStore) AppendWorkout(ctx context.Context, ev model.WorkoutEvent) error {
	if err := validateWorkout(ev, s.now(), s.skew); err != nil {
		return err
	}
	return s.append(ctx, ev, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO events (event_id, user_id, kind, occurred_at, plan_id, duration_seconds)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			ev.EventID, ev.UserID, kindWorkout, ev.CompletedAt, ev.PlanID, ev.DurationSeconds)
		return err
	})
}

func (s *PostgresStore) append(ctx context.Context, ev model.Event, insert func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialize appends per user for the ordering check.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ev.User()); err != nil {
		return fmt.Errorf("acquire partition lock: %w", err)
	}

	var latest *time.Time
	row := tx.QueryRow(ctx, `SELECT max(occurred_at) FROM events WHERE user_id = $1`, ev.User())
	if err := row.Scan(&latest); err != nil {
		return fmt.Errorf("read latest event time: %w", err)
	}
	if latest != nil && ev.OccurredAt().Before(latest.Add(-s.skew)) {
		return ErrOutOfOrderEvent
	}

	if err := insert(tx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Replay returns the user's event slice ordered by (occurred_at, event_id).
// A non-zero since drops events that occurred before it.
func (s *PostgresStore) Replay(ctx context.Context, userID string, since time.Time) ([]model.Event, error) {
	query := `SELECT event_id, kind, occurred_at, height, source, plan_id, duration_seconds
		 FROM events WHERE user_id = $1`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND occurred_at >= $2`
		args = append(args, since)
	}
	query += ` ORDER BY occurred_at, event_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			eventID    string
			kind       string
			occurredAt time.Time
			height     *float64
			source     *string
			planID     *string
			duration   *int
		)
		if err := rows.Scan(&eventID, &kind, &occurredAt, &height, &source, &planID, &duration); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		switch kind {
		case kindJump:
			ev := model.JumpEvent{EventID: eventID, UserID: userID, CapturedAt: occurredAt}
			if height != nil {
				ev.Height = *height
			}
			if source != nil {
				ev.Source = model.Source(*source)
			}
			out = append(out, ev)
		case kindWorkout:
			ev := model.WorkoutEvent{EventID: eventID, UserID: userID, CompletedAt: occurredAt}
			if planID != nil {
				ev.PlanID = *planID
			}
			if duration != nil {
				ev.DurationSeconds = *duration
			}
			out = append(out, ev)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("replay %s: %w", userID, err)
	}
	return out, nil
}

// Users lists user ids with at least one event, ascending.
func (s *PostgresStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM events ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Count returns the total number of stored events.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
