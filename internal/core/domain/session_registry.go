package domain

import (
	"time"

	"github.com/rs/zerolog"
)

// Session binds an opaque session id to the username that authenticated it.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the session is still usable at now.
// A session stops being valid at the instant ExpiresAt is reached.
func (s Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// MarshalZerologObject logs the session without leaking the full id.
func (s Session) MarshalZerologObject(e *zerolog.Event) {
	e.Str("session", ShortID(s.ID)).
		Str("username", s.Username).
		Time("created_at", s.CreatedAt).
		Time("expires_at", s.ExpiresAt)
}

// ShortID truncates a session id for log output.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

// SessionRegistry defines the contract for the process-wide session table.
// Implementations live in internal/core/repository (Core layer) and own every
// Session exclusively: callers only ever see copies.
type SessionRegistry interface {
	// Create stores a new session for username and returns its id.
	Create(username string) (string, error)

	// Validate reports whether id names a live session.
	// An expired entry is deleted by the same call that observes it.
	Validate(id string) bool

	// Lookup is Validate that also returns the session.
	Lookup(id string) (Session, bool)

	// Revoke deletes the session and reports whether it existed.
	Revoke(id string) bool

	// Len returns the number of stored entries, expired ones included.
	Len() int
}
