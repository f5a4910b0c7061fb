package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/solace-app/solace/backend/internal/models"
)

// ErrAuthentication is returned when a verified token names a user that the
// store does not know. Unlike an invalid token, this rejects the connection.
var ErrAuthentication = errors.New("authentication failed")

// UserFinder is the slice of the user store the resolver needs.
type UserFinder interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns an inbound connection's credential into a participant
// identity: a registered user when a valid token is presented, otherwise an
// ephemeral guest.
type Resolver struct {
	tokens *TokenManager
	users  UserFinder

	// guards guest ID generation so concurrent connects never collide
	mu          sync.Mutex
	lastGuestID int64
}

// NewResolver creates a Resolver backed by the given token manager and
// user store.
func NewResolver(tokens *TokenManager, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve maps a credential to a participant:
//   - no token: a guest participant, always
//   - verifiable token whose user exists: that registered user
//   - verifiable token whose user is missing: ErrAuthentication, connection rejected
//   - malformed, tampered, or expired token: degraded to a guest participant
//
// The degrade-to-guest fallback means a bad token never blocks access, it
// only loses identity. Whether that is the right policy or an authorization
// gap is an open question tracked in the tests.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.Participant, error) {
	if token == "" {
		return r.newGuest(), nil
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		log.Printf("[Auth] Invalid token, degrading to guest: %v", err)
		return r.newGuest(), nil
	}

	user, err := r.users.FindUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	p := user.Participant()
	p.LastSeen = time.Now().UTC()
	return p, nil
}

// newGuest mints an ephemeral guest participant. IDs are derived from the
// current time and kept strictly increasing so two connects in the same
// millisecond still get distinct identities.
func (r *Resolver) newGuest() *models.Participant {
	r.mu.Lock()
	id := time.Now().UnixMilli()
	if id <= r.lastGuestID {
		id = r.lastGuestID + 1
	}
	r.lastGuestID = id
	r.mu.Unlock()

	guestID := fmt.Sprintf("%s%d", models.GuestPrefix, id)
	return &models.Participant{
		ID:       guestID,
		Username: fmt.Sprintf("Guest %d", id%10000),
		Status:   models.StatusOnline,
		LastSeen: time.Now().UTC(),
	}
}
