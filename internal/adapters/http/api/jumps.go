// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airtime-fit/airtime/internal/domain/model"
)

// JumpDependencies defines the interface for jump ingestion.
type JumpDependencies interface {
	RecordJump(ctx context.Context, sub JumpSubmission) (string, bool, error)
}

// JumpsHandler handles jump submissions.
type JumpsHandler struct {
	deps JumpDependencies
}

// NewJumpsHandler creates a new jumps handler.
func NewJumpsHandler(deps JumpDependencies) *JumpsHandler {
	return &JumpsHandler{deps: deps}
}

// jumpRequest mirrors the JSON schema for POST /jumps.
type jumpRequest struct {
	EventID    string  `json:"event_id,omitempty"`
	UserID     string  `json:"user_id"`
	Height     float64 `json:"height_inches"`
	CapturedAt string  `json:"captured_at"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

func (j jumpRequest) validate() error {
	switch {
	case strings.TrimSpace(j.UserID) == "":
		return fmt.Errorf("%w: missing user_id", ErrBadRequest)
	case strings.TrimSpace(j.CapturedAt) == "":
		return fmt.Errorf("%w: missing captured_at", ErrBadRequest)
	case strings.TrimSpace(j.Source) == "":
		return fmt.Errorf("%w: missing source", ErrBadRequest)
	}
	if _, err := time.Parse(time.RFC3339, j.CapturedAt); err != nil {
		return fmt.Errorf("%w: captured_at must be RFC3339", ErrBadRequest)
	}
	if !model.Source(j.Source).Valid() {
		return fmt.Errorf("%w: unknown source %q", ErrBadRequest, j.Source)
	}
	return nil
}

// HandlePostJump handles POST /jumps requests.
func (h *JumpsHandler) HandlePostJump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	capturedAt, _ := time.Parse(time.RFC3339, req.CapturedAt)
	eventID, duplicate, err := h.deps.RecordJump(r.Context(), JumpSubmission{
		EventID:    req.EventID,
		UserID:     req.UserID,
		Height:     req.Height,
		CapturedAt: capturedAt,
		Confidence: req.Confidence,
		Source:     model.Source(req.Source),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", EventID: eventID, Duplicate: duplicate})
}
