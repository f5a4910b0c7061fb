package chat

import (
	"errors"

	"github.com/solace-app/solace/backend/internal/models"
)

// Failure conditions surfaced to the originating session as error events.
// None of them disconnect the session or affect other participants.
var (
	// ErrRoomJoin means the transcript gateway could not be reached while
	// joining; the session keeps its previous state.
	ErrRoomJoin = errors.New("failed to join room")

	// ErrNotInRoom means the session tried a room-scoped action without
	// being a member of that room.
	ErrNotInRoom = errors.New("not in room")

	// ErrInvalidMessage means the message failed a precondition (empty
	// content, unknown room).
	ErrInvalidMessage = errors.New("invalid message")

	// ErrRateLimited means the sliding-window limit rejected the message.
	// The single message is dropped; nothing else is penalized.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Session is one live connection bound to a resolved participant. The
// websocket client implements it for production; tests substitute fakes.
// Send must never block the coordinator: implementations buffer and drop
// rather than stall a broadcast.
type Session interface {
	// Participant returns the identity resolved at connect time.
	Participant() *models.Participant

	// Send queues an outbound event for delivery. Delivery to a vanished
	// connection is a silent no-op.
	Send(ev models.OutboundEvent)
}
