package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/duynhne/webui-auth-gate/internal/core/domain"
)

// DefaultSessionTTL is the lifetime of a freshly created session.
const DefaultSessionTTL = 24 * time.Hour

// MemorySessionRegistry implements domain.SessionRegistry with a mutex-guarded map.
// State is process-local: a restart invalidates every session.
type MemorySessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	ttl   time.Duration
	now   func() time.Time
	newID func() (string, error)
}

// RegistryOption configures a MemorySessionRegistry.
type RegistryOption func(*MemorySessionRegistry)

// WithTTL overrides DefaultSessionTTL.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *MemorySessionRegistry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *MemorySessionRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(gen func() (string, error)) RegistryOption {
	return func(r *MemorySessionRegistry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewMemorySessionRegistry creates an empty registry.
func NewMemorySessionRegistry(opts ...RegistryOption) *MemorySessionRegistry {
	r := &MemorySessionRegistry{
		sessions: make(map[string]domain.Session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		newID:    newSessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newSessionID returns a version 4 UUID: 122 bits from crypto/rand.
func newSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// TTL returns the lifetime given to new sessions.
func (r *MemorySessionRegistry) TTL() time.Duration {
	return r.ttl
}

// Create stores a new session for username and returns its id.
func (r *MemorySessionRegistry) Create(username string) (string, error) {
	id, err := r.newID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	now := r.now()
	sess := domain.Session{
		ID:        id,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	if _, exists := r.sessions[id]; exists {
		r.mu.Unlock()
		return "", fmt.Errorf("generate session id: duplicate %s", domain.ShortID(id))
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	log.Debug().Object("session", sess).Msg("Session created")
	return id, nil
}

// Validate reports whether id names a live session.
func (r *MemorySessionRegistry) Validate(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Lookup returns the session for id if it exists and has not expired.
// The expiry check and the delete happen under the same lock, so two
// concurrent callers can never both observe an expired entry as valid.
func (r *MemorySessionRegistry) Lookup(id string) (domain.Session, bool) {
	if id == "" {
		return domain.Session{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, exists := r.sessions[id]
	if !exists {
		return domain.Session{}, false
	}

	if !sess.ValidAt(r.now()) {
		delete(r.sessions, id)
		return domain.Session{}, false
	}

	return sess, true
}

// Revoke deletes the session and reports whether it existed.
func (r *MemorySessionRegistry) Revoke(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.sessions[id]
	delete(r.sessions, id)
	return exists
}

// Len returns the number of stored entries, expired ones included.
func (r *MemorySessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep deletes every expired entry and returns how many were removed.
func (r *MemorySessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, sess := range r.sessions {
		if !sess.ValidAt(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
// A non-positive interval returns immediately, leaving expiry lazy-only.
func (r *MemorySessionRegistry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Expired sessions swept")
			}
		}
	}
}
