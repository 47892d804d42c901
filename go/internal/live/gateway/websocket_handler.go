package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/liveworkshop/go/internal/live"
	"github.com/mcdev12/liveworkshop/go/internal/live/broadcast"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles websocket upgrade requests
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	stateProvider     StateProvider
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(cm *ConnectionManager, provider StateProvider) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		stateProvider:     provider,
	}
}

// HandleWebSocket upgrades a screen connection. The workshop is read from
// the workshop_id query parameter and the first frame is a STATE_SYNC of the
// current snapshot.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	workshopID, err := uuid.Parse(r.URL.Query().Get("workshop_id"))
	if err != nil {
		http.Error(w, "valid workshop_id is required", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.Derive(r.Context(), workshopID)
	if err != nil {
		writeDeriveError(w, workshopID, err)
		return
	}
	initial, err := broadcast.Encode(broadcast.MessageStateSync, state)
	if err != nil {
		log.Error().Err(err).Str("workshop_id", workshopID.String()).Msg("failed to encode cold snapshot")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("workshop_id", workshopID.String()).
		Str("remote_addr", r.RemoteAddr).
		Msg("websocket connection request")

	// The upgrader has already replied on failure.
	if err := h.connectionManager.UpgradeConnection(w, r, workshopID, initial); err != nil {
		log.Error().Err(err).Str("workshop_id", workshopID.String()).Msg("failed to upgrade websocket connection")
	}
}

// HandleStats returns connection statistics
func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

func writeDeriveError(w http.ResponseWriter, workshopID uuid.UUID, err error) {
	if errors.Is(err, live.ErrNotFound) {
		http.Error(w, "workshop not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Str("workshop_id", workshopID.String()).Msg("failed to derive live state")
	http.Error(w, "failed to derive live state", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write json response")
	}
}
