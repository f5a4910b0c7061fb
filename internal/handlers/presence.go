package handlers

import (
	"net/http"

	"github.com/solace-app/solace/backend/internal/chat"
)

// PresenceHandler exposes the live participant set over REST for pages that
// are not holding a WebSocket connection.
type PresenceHandler struct {
	presence *chat.Presence
}

// NewPresenceHandler creates a new PresenceHandler instance.
func NewPresenceHandler(presence *chat.Presence) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// GetPresence handles GET /api/presence
// Returns every currently connected participant.
func (h *PresenceHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"participants": h.presence.Snapshot()})
}
