package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/solace-app/solace/backend/internal/models"
)

// TranscriptStore is the durable message gateway the coordinator persists
// to and reads history from. Both calls may block on I/O and are bounded by
// the coordinator's store timeout.
type TranscriptStore interface {
	Append(ctx context.Context, msg *models.Message) error
	History(ctx context.Context, roomID string, limit int) ([]models.Message, error)
}

// Options configures a Coordinator.
type Options struct {
	// StoreTimeout bounds each transcript call. Zero means 5s.
	StoreTimeout time.Duration

	// HistoryLimit is how many messages a joining session receives. Zero means 50.
	HistoryLimit int

	// RateLimitBurst and RateLimitWindow configure the message rate limiter.
	RateLimitBurst  int
	RateLimitWindow time.Duration

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Coordinator orchestrates every connection event: it owns the presence
// registry, room membership table, rate limiter, and typing tracker, and
// fans events out to room members and to the global socket set.
//
// A per-room mutex serializes history reads and message persistence for a
// room, so the order messages are broadcast in always matches the order
// they were committed in. Different rooms never contend.
type Coordinator struct {
	presence *Presence
	rooms    *Rooms
	limiter  *RateLimiter
	typing   *Typing
	store    TranscriptStore

	storeTimeout time.Duration
	historyLimit int
	now          func() time.Time

	// roomLocks entries are retained for the process lifetime; the set is
	// bounded by the distinct room IDs seen
	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewCoordinator creates a Coordinator over the given transcript store.
func NewCoordinator(store TranscriptStore, opts Options) *Coordinator {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Coordinator{
		presence:     NewPresence(),
		rooms:        NewRooms(),
		limiter:      NewRateLimiter(opts.RateLimitBurst, opts.RateLimitWindow),
		typing:       NewTyping(),
		store:        store,
		storeTimeout: opts.StoreTimeout,
		historyLimit: opts.HistoryLimit,
		now:          opts.Now,
	}
}

// Presence exposes the registry for the reaper and the REST presence endpoint.
func (c *Coordinator) Presence() *Presence { return c.presence }

// Rooms exposes the membership table, read-only use only.
func (c *Coordinator) Rooms() *Rooms { return c.rooms }

// Limiter exposes the rate limiter for the reaper.
func (c *Coordinator) Limiter() *RateLimiter { return c.limiter }

// Typing exposes the typing tracker for the reaper.
func (c *Coordinator) Typing() *Typing { return c.typing }

// roomLock returns the mutex serializing transcript traffic for one room.
func (c *Coordinator) roomLock(roomID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.roomLocks[roomID]
	if !ok {
		if c.roomLocks == nil {
			c.roomLocks = make(map[string]*sync.Mutex)
		}
		lock = &sync.Mutex{}
		c.roomLocks[roomID] = lock
	}
	return lock
}

// Connect registers a freshly resolved session with presence and announces
// the updated participant set to every connection.
func (c *Coordinator) Connect(sess Session) {
	p := sess.Participant()
	c.presence.Register(p, sess)
	log.Printf("[Coordinator] %s connected (%s)", p.Username, p.ID)
	c.broadcastActiveUsers()
}

// JoinRoom moves a session into a room, implicitly leaving whichever room
// it was in before. The joining session receives the room history and
// participant snapshot; the room receives userJoined and an updated
// participant list. If the transcript gateway is unreachable the join fails
// with ErrRoomJoin and membership is left untouched.
func (c *Coordinator) JoinRoom(ctx context.Context, sess Session, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("%w: no room given", ErrRoomJoin)
	}
	p := sess.Participant()

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	// Fetch history before touching membership so a gateway failure leaves
	// the session exactly where it was. Holding the room lock here means no
	// message can be committed between this read and the join broadcast, so
	// the snapshot is complete.
	storeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	history, err := c.store.History(storeCtx, roomID, c.historyLimit)
	if err != nil {
		log.Printf("[Coordinator] History fetch failed for room %s: %v", roomID, err)
		return fmt.Errorf("%w: %v", ErrRoomJoin, err)
	}

	prevRoom := c.rooms.Join(p.ID, roomID)
	if prevRoom != "" {
		c.announceLeft(p, prevRoom)
	}

	sess.Send(models.OutboundEvent{
		Type: models.EventChatHistory,
		Payload: models.ChatHistoryPayload{
			Messages:     history,
			Participants: c.participantInfos(roomID),
		},
	})

	c.broadcastRoom(roomID, models.OutboundEvent{
		Type: models.EventUserJoined,
		Payload: models.UserEventPayload{
			UserID:    p.ID,
			Username:  p.Username,
			Timestamp: c.now().UTC(),
		},
	})
	c.broadcastRoom(roomID, models.OutboundEvent{
		Type:    models.EventUpdateParticipants,
		Payload: c.participantInfos(roomID),
	})

	log.Printf("[Coordinator] %s joined room %s (members: %d)", p.ID, roomID, len(c.rooms.Members(roomID)))
	return nil
}

// LeaveRoom removes a session from a room it is a member of.
func (c *Coordinator) LeaveRoom(sess Session, roomID string) error {
	p := sess.Participant()
	if !c.rooms.Leave(p.ID, roomID) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, roomID)
	}
	c.announceLeft(p, roomID)
	log.Printf("[Coordinator] %s left room %s", p.ID, roomID)
	return nil
}

// announceLeft broadcasts userLeft and the updated participant and typing
// snapshots to a room's remaining members. Membership must already be gone.
func (c *Coordinator) announceLeft(p *models.Participant, roomID string) {
	c.typing.Clear(p.ID)

	c.broadcastRoom(roomID, models.OutboundEvent{
		Type: models.EventUserLeft,
		Payload: models.UserEventPayload{
			UserID:    p.ID,
			Username:  p.Username,
			Timestamp: c.now().UTC(),
		},
	})
	c.broadcastRoom(roomID, models.OutboundEvent{
		Type:    models.EventUpdateParticipants,
		Payload: c.participantInfos(roomID),
	})
	c.broadcastRoom(roomID, models.OutboundEvent{
		Type:    models.EventTypingStatus,
		Payload: c.typing.Snapshot(roomID, c.presence),
	})
}

// SetTyping records or clears the session's typing mark and broadcasts the
// recomputed snapshot to the affected room only.
func (c *Coordinator) SetTyping(sess Session, roomID string, isTyping bool) error {
	p := sess.Participant()
	if !c.rooms.IsMember(p.ID, roomID) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, roomID)
	}

	if isTyping {
		c.typing.Set(p.ID, roomID)
	} else {
		c.typing.Clear(p.ID)
	}

	c.broadcastRoom(roomID, models.OutboundEvent{
		Type:    models.EventTypingStatus,
		Payload: c.typing.Snapshot(roomID, c.presence),
	})
	return nil
}

// GroupMessage validates, rate-limits, persists, and broadcasts a message
// to a room. The broadcast happens only after the durable write succeeds,
// and the per-room lock keeps broadcast order equal to commit order.
func (c *Coordinator) GroupMessage(ctx context.Context, sess Session, roomID, content string) error {
	p := sess.Participant()

	if content == "" || roomID == "" {
		return ErrInvalidMessage
	}
	if !c.rooms.IsMember(p.ID, roomID) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, roomID)
	}
	if !c.limiter.Admit(p.ID, c.now()) {
		return ErrRateLimited
	}

	msg := &models.Message{
		RoomID:   roomID,
		SenderID: p.ID,
		Username: p.Username,
		Avatar:   p.Avatar,
		Content:  content,
		Kind:     models.KindGroup,
	}

	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	storeCtx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	if err := c.store.Append(storeCtx, msg); err != nil {
		log.Printf("[Coordinator] Persist failed for room %s: %v", roomID, err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.broadcastRoom(roomID, models.OutboundEvent{
		Type:    models.EventGroupMessage,
		Payload: msg,
	})
	return nil
}

// PrivateMessage delivers a payload directly to the recipient's live
// session, fire-and-forget: if the recipient is not connected the message
// is silently dropped. Nothing is persisted.
func (c *Coordinator) PrivateMessage(sess Session, to string, payload json.RawMessage) {
	target, ok := c.presence.Session(to)
	if !ok {
		log.Printf("[Coordinator] Dropping private message to offline participant %s", to)
		return
	}

	target.Send(models.OutboundEvent{
		Type: models.EventPrivateMessage,
		Payload: models.PrivateMessagePayload{
			From:      sess.Participant().ID,
			Timestamp: c.now().UTC(),
			Payload:   payload,
		},
	})
}

// Disconnect tears down everything a session held: room membership (with
// userLeft to the remaining members), its typing mark, its rate window, and
// its presence entry. The session is terminal after this.
func (c *Coordinator) Disconnect(sess Session) {
	p := sess.Participant()

	if roomID := c.rooms.RoomOf(p.ID); roomID != "" {
		c.rooms.Leave(p.ID, roomID)
		c.announceLeft(p, roomID)
	}
	c.typing.Clear(p.ID)
	c.limiter.Forget(p.ID)

	// A second connection may have taken over this identity; only drop the
	// presence entry if it still points at this session.
	if cur, ok := c.presence.Session(p.ID); ok && cur == sess {
		c.presence.Unregister(p.ID)
	}

	log.Printf("[Coordinator] %s disconnected (%s)", p.Username, p.ID)
	c.broadcastActiveUsers()
}

// participantInfos returns the compact participant list for a room's
// current members.
func (c *Coordinator) participantInfos(roomID string) []models.ParticipantInfo {
	ids := c.rooms.Members(roomID)
	infos := make([]models.ParticipantInfo, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.presence.Lookup(id); ok {
			infos = append(infos, p.Info())
		}
	}
	return infos
}

// broadcastRoom fans an event out to every member of a room. Delivery to a
// member whose connection has vanished is a silent no-op.
func (c *Coordinator) broadcastRoom(roomID string, ev models.OutboundEvent) {
	for _, id := range c.rooms.Members(roomID) {
		if sess, ok := c.presence.Session(id); ok {
			sess.Send(ev)
		}
	}
}

// broadcastActiveUsers sends the full presence list to every connection.
func (c *Coordinator) broadcastActiveUsers() {
	ev := models.OutboundEvent{
		Type:    models.EventActiveUsers,
		Payload: c.presence.Snapshot(),
	}
	for _, sess := range c.presence.Sessions() {
		sess.Send(ev)
	}
}
