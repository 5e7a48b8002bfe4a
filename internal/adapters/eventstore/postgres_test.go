package eventstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	eventstore "github.com/airtime-fit/airtime/internal/adapters/eventstore"
	model "github.com/airtime-fit/airtime/internal/domain/model"
)

// pgStore connects to the database named by AIRTIME_TEST_POSTGRES_URL, or
// skips the test when the variable is unset.
func pgStore(t *testing.T) *eventstore.PostgresStore {
	t.Helper()
	url := os.Getenv("AIRTIME_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AIRTIME_TEST_POSTGRES_URL not set")
	}
	s, err := eventstore.NewPostgresStore(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestPostgresAppendReplay(t *testing.T) {
	ctx := context.Background()
	s := pgStore(t)
	user := "pg-test-" + uuid.NewString()
	at := time.Now().Add(-time.Hour).Truncate(time.Microsecond)

	require.NoError(t, s.AppendWorkout(ctx, model.WorkoutEvent{
		EventID: uuid.NewString(), UserID: user, PlanID: "plyo-basics",
		CompletedAt: at, DurationSeconds: 900,
	}))
	jumpID := uuid.NewString()
	require.NoError(t, s.AppendJump(ctx, model.JumpEvent{
		EventID: jumpID, UserID: user, Height: 27.5,
		CapturedAt: at.Add(10 * time.Minute), Source: model.SourceCamera,
	}))

	events, err := s.Replay(ctx, user, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.WithinDuration(t, at, events[0].OccurredAt(), time.Millisecond)
	require.IsType(t, model.WorkoutEvent{}, events[0])
	require.IsType(t, model.JumpEvent{}, events[1])

	jump, ok := events[1].(model.JumpEvent)
	require.True(t, ok)
	require.Equal(t, 27.5, jump.Height)
	require.Equal(t, model.SourceCamera, jump.Source)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	require.Contains(t, users, user)

	// A lower bound drops the earlier workout.
	tail, err := s.Replay(ctx, user, at.Add(5*time.Minute))
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, jumpID, tail[0].ID())

	// Duplicate id maps to the idempotent sentinel.
	err = s.AppendJump(ctx, model.JumpEvent{
		EventID: jumpID, UserID: user, Height: 27.5,
		CapturedAt: at.Add(10 * time.Minute), Source: model.SourceCamera,
	})
	require.ErrorIs(t, err, eventstore.ErrDuplicateEvent)
}

func TestPostgresOrderingGuard(t *testing.T) {
	ctx := context.Background()
	s := pgStore(t)
	user := "pg-test-" + uuid.NewString()
	at := time.Now().Add(-time.Hour)

	require.NoError(t, s.AppendJump(ctx, model.JumpEvent{
		EventID: uuid.NewString(), UserID: user, Height: 27.5,
		CapturedAt: at, Source: model.SourceManual,
	}))

	err := s.AppendJump(ctx, model.JumpEvent{
		EventID: uuid.NewString(), UserID: user, Height: 26.0,
		CapturedAt: at.Add(-10 * time.Minute), Source: model.SourceManual,
	})
	require.ErrorIs(t, err, eventstore.ErrOutOfOrderEvent)

	// Within tolerance lag is accepted.
	require.NoError(t, s.AppendJump(ctx, model.JumpEvent{
		EventID: uuid.NewString(), UserID: user, Height: 26.5,
		CapturedAt: at.Add(-4 * time.Minute), Source: model.SourceManual,
	}))
}
