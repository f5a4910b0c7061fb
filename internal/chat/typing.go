package chat

import (
	"sort"
	"sync"

	"github.com/solace-app/solace/backend/internal/models"
)

// Typing tracks which room, if any, each participant is currently composing
// in. A participant holds at most one mark; setting a new one supersedes
// the old. There is no expiry timer: clients clear explicitly, and
// disconnect clears as well.
type Typing struct {
	mu     sync.RWMutex
	roomOf map[string]string
}

// NewTyping creates an empty typing tracker.
func NewTyping() *Typing {
	return &Typing{roomOf: make(map[string]string)}
}

// Set marks a participant as composing in a room, superseding any previous
// mark.
func (t *Typing) Set(participantID, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roomOf[participantID] = roomID
}

// Clear removes a participant's typing mark, if any.
func (t *Typing) Clear(participantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.roomOf, participantID)
}

// Snapshot recomputes the list of participants currently composing in a
// room, with display names resolved through presence. The list is sorted by
// participant ID so repeated snapshots of the same state compare equal.
func (t *Typing) Snapshot(roomID string, presence *Presence) []models.TypingEntry {
	t.mu.RLock()
	ids := make([]string, 0, 4)
	for id, room := range t.roomOf {
		if room == roomID {
			ids = append(ids, id)
		}
	}
	t.mu.RUnlock()

	sort.Strings(ids)

	entries := make([]models.TypingEntry, 0, len(ids))
	for _, id := range ids {
		entry := models.TypingEntry{UserID: id}
		if p, ok := presence.Lookup(id); ok {
			entry.Username = p.Username
		}
		entries = append(entries, entry)
	}
	return entries
}

// Tracked returns the participant IDs that currently hold a mark, for the
// reaper's sweep.
func (t *Typing) Tracked() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.roomOf))
	for id := range t.roomOf {
		ids = append(ids, id)
	}
	return ids
}
