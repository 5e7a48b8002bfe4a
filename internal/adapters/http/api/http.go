// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/airtime-fit/airtime/internal/adapters/eventstore"
	"github.com/airtime-fit/airtime/internal/adapters/repository"
	service "github.com/airtime-fit/airtime/internal/app"
	"github.com/airtime-fit/airtime/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordJump(ctx context.Context, sub JumpSubmission) (string, bool, error)
	RecordWorkout(ctx context.Context, sub WorkoutSubmission) (string, bool, error)
	Progress(ctx context.Context, userID string) (ProgressSnapshot, error)
	Leaderboard(ctx context.Context, windowDays, limit int) ([]LeaderboardEntry, error)
	RecentUnlocks(ctx context.Context, userID string, limit int) ([]Unlock, error)
	Stats(ctx context.Context) (Stats, error)
}

// Read and write shapes mirrored from the shared types package.
type (
	JumpSubmission    = types.JumpSubmission
	WorkoutSubmission = types.WorkoutSubmission
	ProgressSnapshot  = types.ProgressSnapshot
	LeaderboardEntry  = types.LeaderboardEntry
	Unlock            = types.Unlock
	Stats             = types.Stats
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	jumpsHandler       *JumpsHandler
	workoutsHandler    *WorkoutsHandler
	progressHandler    *ProgressHandler
	leaderboardHandler *LeaderboardHandler
	unlocksHandler     *UnlocksHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		jumpsHandler:       NewJumpsHandler(deps),
		workoutsHandler:    NewWorkoutsHandler(deps),
		progressHandler:    NewProgressHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		unlocksHandler:     NewUnlocksHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/jumps", MetricsMiddleware(s.jumpsHandler.HandlePostJump, "jumps"))
	mux.HandleFunc("/workouts", MetricsMiddleware(s.workoutsHandler.HandlePostWorkout, "workouts"))
	mux.HandleFunc("/progress/", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/unlocks/", MetricsMiddleware(s.unlocksHandler.HandleGetUnlocks, "unlocks"))
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLowConfidence):
		writeError(w, http.StatusUnprocessableEntity, "low_confidence", err)
	case errors.Is(err, service.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, eventstore.ErrOutOfOrderEvent):
		writeError(w, http.StatusConflict, "out_of_order", err)
	case errors.Is(err, eventstore.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "invalid_event", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
