package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound event types. This is the closed set of events a client may send;
// anything else is rejected at decode time so the dispatch switch stays
// exhaustive.
const (
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventTyping         = "typing"
	EventGroupMessage   = "groupMessage"
	EventPrivateMessage = "privateMessage"
)

// Outbound event types.
const (
	EventActiveUsers        = "activeUsers"
	EventChatHistory        = "chatHistory"
	EventUserJoined         = "userJoined"
	EventUserLeft           = "userLeft"
	EventUpdateParticipants = "updateParticipants"
	EventTypingStatus       = "typingStatus"
	EventError              = "error"
	// groupMessage and privateMessage are reused verbatim on the way out
)

// Envelope is the wire format for every event in both directions:
// a type tag plus a raw payload decoded per type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InboundEvent is the decoded form of a client event. Exactly one payload
// field set is meaningful per Type.
type InboundEvent struct {
	Type string

	// joinRoom / leaveRoom / typing / groupMessage
	Room string

	// typing
	IsTyping bool

	// groupMessage
	Content string

	// privateMessage
	To      string
	Payload json.RawMessage
}

// joinPayload covers joinRoom and leaveRoom.
type joinPayload struct {
	Room string `json:"room"`
}

type typingPayload struct {
	Room     string `json:"room"`
	IsTyping bool   `json:"is_typing"`
}

type groupMessagePayload struct {
	Room    string `json:"room"`
	Content string `json:"content"`
}

type privateMessagePayload struct {
	To string `json:"to"`
}

// DecodeInbound parses a raw client frame into an InboundEvent.
// Unknown event types are an error so the coordinator's dispatch never sees
// a type outside the closed set above.
func DecodeInbound(raw []byte) (*InboundEvent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid event envelope: %w", err)
	}

	ev := &InboundEvent{Type: env.Type}

	switch env.Type {
	case EventJoinRoom, EventLeaveRoom:
		var p joinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", env.Type, err)
		}
		ev.Room = p.Room

	case EventTyping:
		var p typingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid typing payload: %w", err)
		}
		ev.Room = p.Room
		ev.IsTyping = p.IsTyping

	case EventGroupMessage:
		var p groupMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid groupMessage payload: %w", err)
		}
		ev.Room = p.Room
		ev.Content = p.Content

	case EventPrivateMessage:
		var p privateMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid privateMessage payload: %w", err)
		}
		ev.To = p.To
		// The full payload is forwarded to the recipient as-is
		ev.Payload = env.Payload

	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}

	return ev, nil
}

// OutboundEvent is a typed event plus its payload, marshaled into an
// Envelope on the way out.
type OutboundEvent struct {
	Type    string
	Payload any
}

// Encode marshals the event into its wire envelope.
func (e OutboundEvent) Encode() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", e.Type, err)
	}
	return json.Marshal(Envelope{Type: e.Type, Payload: payload})
}

// UserEventPayload is the payload for userJoined and userLeft broadcasts.
type UserEventPayload struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistoryPayload is sent to a connection right after it joins a room.
type ChatHistoryPayload struct {
	Messages     []Message         `json:"messages"`
	Participants []ParticipantInfo `json:"participants"`
}

// TypingEntry identifies one participant currently composing in a room.
type TypingEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ErrorPayload carries a failure back to the originating connection only.
type ErrorPayload struct {
	Message string `json:"message"`
}

// PrivateMessagePayload wraps a forwarded private payload with sender
// identity and delivery time.
type PrivateMessagePayload struct {
	From      string          `json:"from"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
