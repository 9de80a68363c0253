package brainstorm

import (
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Session Registry — process-wide user → session mapping
// ──────────────────────────────────────────────

// sessionEntry pairs a session with its per-user turn lock.
type sessionEntry struct {
	mu      sync.Mutex
	session *ConversationSession
}

// SessionRegistry owns every ConversationSession, keyed by user ID.
//
// Each entry carries its own lock so one user's turn never blocks another
// user. Sessions are reachable only through the registry; callers must go
// through Acquire for any mutation.
type SessionRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	sweepMu sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{entries: make(map[string]*sessionEntry)}
}

// GetOrCreate returns the session for userID, creating a Ready session if
// absent. Never fails.
func (r *SessionRegistry) GetOrCreate(userID string) *ConversationSession {
	return r.getOrCreateEntry(userID).session
}

func (r *SessionRegistry) getOrCreateEntry(userID string) *sessionEntry {
	r.mu.RLock()
	e := r.entries[userID]
	r.mu.RUnlock()
	if e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e = r.entries[userID]; e == nil {
		e = &sessionEntry{session: NewConversationSession(userID, time.Now())}
		r.entries[userID] = e
	}
	return e
}

// Acquire returns the user's session with its turn lock held, creating the
// session if needed. The caller must invoke release when the turn completes.
// Turns for the same user are fully serialized; different users proceed in
// parallel.
func (r *SessionRegistry) Acquire(userID string) (*ConversationSession, func()) {
	e := r.getOrCreateEntry(userID)
	e.mu.Lock()
	return e.session, e.mu.Unlock
}

// Exists reports whether userID has a registry entry.
func (r *SessionRegistry) Exists(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[userID]
	return ok
}

// Remove deletes the user's session. Idempotent; a no-op when absent.
func (r *SessionRegistry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ──────────────────────────────────────────────
// Idle eviction (optional)
// ──────────────────────────────────────────────

// SweepIdle removes sessions whose last activity is older than ttl and
// returns how many were evicted. Entries currently in a turn are skipped.
func (r *SessionRegistry) SweepIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for userID, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.session.LastActivity)
		e.mu.Unlock()
		if idle > ttl {
			delete(r.entries, userID)
			evicted++
		}
	}
	if evicted > 0 {
		log.Printf("[SessionRegistry] Swept idle sessions | count=%d ttl=%s", evicted, ttl)
	}
	return evicted
}

// StartSweeper launches a background loop that evicts sessions idle longer
// than ttl, checking every interval. Non-blocking; a second call while
// running is a no-op.
func (r *SessionRegistry) StartSweeper(interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	r.sweepMu.Lock()
	if r.running {
		r.sweepMu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.sweepMu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				r.SweepIdle(ttl)
			}
		}
	}()
	log.Printf("[SessionRegistry] Sweeper started | interval=%s ttl=%s", interval, ttl)
}

// StopSweeper halts the background sweeper.
func (r *SessionRegistry) StopSweeper() {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stopCh)
	log.Println("[SessionRegistry] Sweeper stopped")
}
