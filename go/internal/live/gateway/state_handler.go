package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// StateProvider derives the current snapshot of a workshop. Both live.App and
// client.Client satisfy it.
type StateProvider interface {
	Derive(ctx context.Context, workshopID uuid.UUID) (*models.LiveState, error)
}

// StateHandler serves cold reads for screens that cannot hold a websocket.
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{stateProvider: provider}
}

// HandleGetState handles GET /api/workshops/{id}/state
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	workshopID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid workshop ID", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.Derive(r.Context(), workshopID)
	if err != nil {
		writeDeriveError(w, workshopID, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
