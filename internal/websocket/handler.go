package websocket

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/solace-app/solace/backend/internal/auth"
	"github.com/solace-app/solace/backend/internal/chat"
)

// upgrader upgrades HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow connections from any origin (CORS handled by middleware)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	coordinator *chat.Coordinator
	resolver    *auth.Resolver
}

// NewHandler creates a new WebSocket handler
func NewHandler(coordinator *chat.Coordinator, resolver *auth.Resolver) *Handler {
	return &Handler{coordinator: coordinator, resolver: resolver}
}

// ServeWS handles WebSocket upgrade requests at /ws.
// An optional bearer token is passed as the 'token' query param; connections
// without one, or with one that fails verification, come in as guests. A
// verified token whose account no longer exists is the one case that rejects.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	participant, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrAuthentication) {
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}
		log.Printf("[WebSocket] Resolve failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade failed: %v", err)
		return
	}

	log.Printf("[WebSocket] New connection: participant=%s, username=%s, guest=%v",
		participant.ID, participant.Username, participant.IsGuest())

	// Create client, register with the coordinator, start pumps
	client := NewClient(h.coordinator, conn, participant)
	h.coordinator.Connect(client)

	go client.WritePump()
	go client.ReadPump()
}
