package models

import "time"

// Message kinds. Group messages are persisted to the transcript before they
// are broadcast; private messages are transient and never stored.
const (
	KindGroup   = "group"
	KindPrivate = "private"
)

// Message represents a chat message in a counseling session room.
// Group messages are written to the durable transcript before any client
// sees them, so every message visible to a client is recoverable from
// history.
type Message struct {
	// ID is the server-assigned unique identifier for this message
	ID string `gorm:"primarykey;size:36" json:"id"`

	// RoomID is the room this message belongs to
	RoomID string `gorm:"size:64;index;not null" json:"room_id"`

	// SenderID is the sender's participant ID
	SenderID string `gorm:"size:64;not null" json:"sender_id"`

	// Username is the sender's display name at send time
	Username string `gorm:"size:100" json:"username"`

	// Avatar is the sender's avatar identifier at send time
	Avatar string `gorm:"size:255" json:"avatar"`

	// Content is the message body
	Content string `gorm:"size:4096;not null" json:"content"`

	// Kind is "group" or "private"; only group messages are persisted
	Kind string `gorm:"size:16;not null;default:group" json:"kind"`

	// CreatedAt is the server-assigned send timestamp
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// GetMessagesResponse is the response for the REST history fallback.
type GetMessagesResponse struct {
	Messages []Message `json:"messages"`
}
