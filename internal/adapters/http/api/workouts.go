// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WorkoutDependencies defines the interface for workout ingestion.
type WorkoutDependencies interface {
	RecordWorkout(ctx context.Context, sub WorkoutSubmission) (string, bool, error)
}

// WorkoutsHandler handles workout completions.
type WorkoutsHandler struct {
	deps WorkoutDependencies
}

// NewWorkoutsHandler creates a new workouts handler.
func NewWorkoutsHandler(deps WorkoutDependencies) *WorkoutsHandler {
	return &WorkoutsHandler{deps: deps}
}

// workoutRequest mirrors the JSON schema for POST /workouts.
type workoutRequest struct {
	EventID         string `json:"event_id,omitempty"`
	UserID          string `json:"user_id"`
	PlanID          string `json:"plan_id"`
	CompletedAt     string `json:"completed_at"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (wr workoutRequest) validate() error {
	switch {
	case strings.TrimSpace(wr.UserID) == "":
		return fmt.Errorf("%w: missing user_id", ErrBadRequest)
	case strings.TrimSpace(wr.PlanID) == "":
		return fmt.Errorf("%w: missing plan_id", ErrBadRequest)
	case strings.TrimSpace(wr.CompletedAt) == "":
		return fmt.Errorf("%w: missing completed_at", ErrBadRequest)
	}
	if _, err := time.Parse(time.RFC3339, wr.CompletedAt); err != nil {
		return fmt.Errorf("%w: completed_at must be RFC3339", ErrBadRequest)
	}
	return nil
}

// HandlePostWorkout handles POST /workouts requests.
func (h *WorkoutsHandler) HandlePostWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	completedAt, _ := time.Parse(time.RFC3339, req.CompletedAt)
	eventID, duplicate, err := h.deps.RecordWorkout(r.Context(), WorkoutSubmission{
		EventID:         req.EventID,
		UserID:          req.UserID,
		PlanID:          req.PlanID,
		CompletedAt:     completedAt,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", EventID: eventID, Duplicate: duplicate})
}
