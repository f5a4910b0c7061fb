package chat

import (
	"sync"
	"time"
)

// RateLimiter gates message throughput per participant with a sliding
// window: a message is admitted iff fewer than burst messages were already
// admitted within the trailing window. Denial drops the single message and
// nothing else.
type RateLimiter struct {
	mu      sync.Mutex
	burst   int
	window  time.Duration
	history map[string][]time.Time
}

// NewRateLimiter creates a limiter admitting up to burst messages per
// participant within any trailing window.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{
		burst:   burst,
		window:  window,
		history: make(map[string][]time.Time),
	}
}

// Admit decides whether a message sent by the participant at the given time
// may proceed. On admission the timestamp is recorded against the window.
func (rl *RateLimiter) Admit(participantID string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	stamps := rl.history[participantID]

	// Prune entries that fell out of the trailing window
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rl.burst {
		rl.history[participantID] = kept
		return false
	}

	rl.history[participantID] = append(kept, now)
	return true
}

// Forget drops a participant's window entirely. Called by the reaper for
// participants that are no longer connected.
func (rl *RateLimiter) Forget(participantID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, participantID)
}

// Tracked returns the participant IDs that currently hold a window, for the
// reaper's sweep.
func (rl *RateLimiter) Tracked() []string {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ids := make([]string, 0, len(rl.history))
	for id := range rl.history {
		ids = append(ids, id)
	}
	return ids
}
