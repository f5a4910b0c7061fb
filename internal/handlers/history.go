package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/solace-app/solace/backend/internal/store"
)

// HistoryHandler contains HTTP handlers for transcript access.
// Provides a polling-based fallback when the WebSocket connection fails.
type HistoryHandler struct {
	store *store.Store
	limit int
}

// NewHistoryHandler creates a new HistoryHandler instance.
func NewHistoryHandler(s *store.Store, limit int) *HistoryHandler {
	return &HistoryHandler{store: s, limit: limit}
}

// GetMessages handles GET /api/rooms/{id}/messages
// Returns the newest messages for the room in oldest-first order.
// Query params:
//   - limit: maximum number of messages (defaults to the configured history limit)
func (h *HistoryHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "room ID is required", http.StatusBadRequest)
		return
	}

	limit := h.limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.store.History(r.Context(), roomID, limit)
	if err != nil {
		log.Printf("[History] Failed to read transcript for room %s: %v", roomID, err)
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// writeJSON encodes a response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
