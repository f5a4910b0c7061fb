package models

import (
	"strings"
	"time"
)

// Participant status values. A participant is online exactly while a live
// connection holds their identity; there is no TTL-based expiry.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// GuestPrefix marks ephemeral identities minted at connect time for
// connections that present no credential. Guest participants are never
// written to the database and vanish with the process.
const GuestPrefix = "guest-"

// Participant represents a resolved identity attached to a connection.
// Identity is either a durable user ID from the user store or a freshly
// minted guest ID.
type Participant struct {
	// ID is the durable user ID or a "guest-" prefixed ephemeral ID
	ID string `json:"id"`

	// Username is the display name shown to other participants
	Username string `json:"username"`

	// Avatar is the chosen avatar identifier/URL for the participant
	Avatar string `json:"avatar"`

	// Status is "online" while a connection holds this identity
	Status string `json:"status"`

	// LastSeen is updated when the participant registers with presence
	LastSeen time.Time `json:"last_seen"`
}

// IsGuest reports whether this participant is an ephemeral guest identity.
func (p *Participant) IsGuest() bool {
	return strings.HasPrefix(p.ID, GuestPrefix)
}

// ParticipantInfo is the compact participant shape sent in room-level
// broadcasts (updateParticipants, chatHistory).
type ParticipantInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Info returns the compact broadcast shape for this participant.
func (p *Participant) Info() ParticipantInfo {
	return ParticipantInfo{ID: p.ID, Username: p.Username, Avatar: p.Avatar}
}
