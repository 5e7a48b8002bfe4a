// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// UnlockDependencies defines the interface for unlock history reads.
type UnlockDependencies interface {
	RecentUnlocks(ctx context.Context, userID string, limit int) ([]Unlock, error)
}

// UnlocksHandler handles achievement unlock history requests.
type UnlocksHandler struct {
	deps UnlockDependencies
}

// NewUnlocksHandler creates a new unlocks handler.
func NewUnlocksHandler(deps UnlockDependencies) *UnlocksHandler {
	return &UnlocksHandler{deps: deps}
}

// HandleGetUnlocks handles GET /unlocks/{user_id}?limit=N requests.
func (h *UnlocksHandler) HandleGetUnlocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/unlocks/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	limit, ok := intParam(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	unlocks, err := h.deps.RecentUnlocks(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unlocks)
}
