package services

import (
	"log"
	"time"

	"github.com/solace-app/solace/backend/internal/chat"
)

// Reaper sweeps coordination state left behind by connections that dropped
// without a clean disconnect reaching the coordinator (network partitions,
// killed clients). Rate windows and typing marks belonging to participants
// with no live session are forgotten on each sweep.
type Reaper struct {
	coordinator *chat.Coordinator
	interval    time.Duration
	stopChan    chan struct{}
}

// NewReaper creates a reaper sweeping at the given interval.
func NewReaper(coordinator *chat.Coordinator, interval time.Duration) *Reaper {
	return &Reaper{
		coordinator: coordinator,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the background sweep worker.
// This method runs in its own goroutine and should be called with 'go'.
func (s *Reaper) Start() {
	log.Printf("Reaper started (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			log.Println("Reaper stopped")
			return
		}
	}
}

// Stop gracefully shuts down the reaper.
func (s *Reaper) Stop() {
	close(s.stopChan)
}

// sweep forgets rate windows and typing marks for participants that no
// longer hold a live session.
func (s *Reaper) sweep() {
	presence := s.coordinator.Presence()

	reaped := 0
	for _, id := range s.coordinator.Limiter().Tracked() {
		if !presence.Connected(id) {
			s.coordinator.Limiter().Forget(id)
			reaped++
		}
	}
	for _, id := range s.coordinator.Typing().Tracked() {
		if !presence.Connected(id) {
			s.coordinator.Typing().Clear(id)
			reaped++
		}
	}

	if reaped > 0 {
		log.Printf("[Reaper] Swept %d stale entries", reaped)
	}
}
