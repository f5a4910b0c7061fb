package chat

import (
	"sync"
	"time"

	"github.com/solace-app/solace/backend/internal/models"
)

// Presence tracks exactly the set of currently-connected participants and
// their live sessions. There is no TTL; entries come and go only with
// explicit connect and disconnect events. It also serves as the
// participant-to-session index used for private message delivery.
type Presence struct {
	mu       sync.RWMutex
	entries  map[string]*models.Participant
	sessions map[string]Session
}

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{
		entries:  make(map[string]*models.Participant),
		sessions: make(map[string]Session),
	}
}

// Register inserts or overwrites the live entry for a participant, marking
// them online now. A second connection for the same participant replaces
// the first entry's session binding.
func (p *Presence) Register(participant *models.Participant, sess Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	participant.Status = models.StatusOnline
	participant.LastSeen = time.Now().UTC()
	p.entries[participant.ID] = participant
	p.sessions[participant.ID] = sess
}

// Unregister removes a participant's live entry. Removing an unknown ID is
// a no-op.
func (p *Presence) Unregister(participantID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, participantID)
	delete(p.sessions, participantID)
}

// Lookup returns the live entry for a participant, or false if they are not
// connected.
func (p *Presence) Lookup(participantID string) (*models.Participant, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.entries[participantID]
	return entry, ok
}

// Session returns the live session for a participant ID, or false if no
// connection currently holds that identity.
func (p *Presence) Session(participantID string) (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sess, ok := p.sessions[participantID]
	return sess, ok
}

// Snapshot returns the current set of connected participants.
func (p *Presence) Snapshot() []models.Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()

	list := make([]models.Participant, 0, len(p.entries))
	for _, entry := range p.entries {
		list = append(list, *entry)
	}
	return list
}

// Sessions returns every live session, for global broadcasts.
func (p *Presence) Sessions() []Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	list := make([]Session, 0, len(p.sessions))
	for _, sess := range p.sessions {
		list = append(list, sess)
	}
	return list
}

// Connected reports whether any live session holds the given identity.
// The reaper uses this to find orphaned coordination state.
func (p *Presence) Connected(participantID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.sessions[participantID]
	return ok
}
