package chat

import "sync"

// Rooms is the room membership table. Rooms exist only while they have
// members: they are created lazily on first join and deleted when the last
// member leaves. The dual map keeps the invariant that a participant is a
// member of at most one room at any instant.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
	roomOf  map[string]string
}

// NewRooms creates an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]struct{}),
		roomOf:  make(map[string]string),
	}
}

// Join adds a participant to a room, atomically removing them from any room
// they were in before. Returns the previous room ID ("" if none) so the
// caller can notify its remaining members.
func (r *Rooms) Join(participantID, roomID string) (prevRoom string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevRoom = r.roomOf[participantID]
	if prevRoom != "" {
		r.removeLocked(participantID, prevRoom)
	}

	if r.members[roomID] == nil {
		r.members[roomID] = make(map[string]struct{})
	}
	r.members[roomID][participantID] = struct{}{}
	r.roomOf[participantID] = roomID
	return prevRoom
}

// Leave removes a participant from a room. Reports whether they actually
// were a member.
func (r *Rooms) Leave(participantID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomOf[participantID] != roomID {
		return false
	}
	r.removeLocked(participantID, roomID)
	return true
}

// removeLocked deletes a membership entry and drops the room once empty.
// Caller holds r.mu.
func (r *Rooms) removeLocked(participantID, roomID string) {
	delete(r.roomOf, participantID)
	if set, ok := r.members[roomID]; ok {
		delete(set, participantID)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
}

// Members returns the participant IDs currently joined to a room, empty for
// an unknown room.
func (r *Rooms) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.members[roomID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// RoomOf returns the room a participant is currently in, "" if none.
func (r *Rooms) RoomOf(participantID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roomOf[participantID]
}

// IsMember reports whether a participant is currently joined to a room.
func (r *Rooms) IsMember(participantID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return roomID != "" && r.roomOf[participantID] == roomID
}
