// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Session store errors.
var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionIDCollision is returned when a freshly generated session ID
	// already exists in the store. With 128-bit random IDs this indicates a
	// broken random source rather than bad luck.
	ErrSessionIDCollision = errors.New("session ID collision")
)

// StoreError wraps a backing-storage failure. Middleware maps it to an
// internal server error without exposing the cause to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// newStoreError wraps err unless it is one of the sentinel session errors.
func newStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionIDCollision) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// SessionData is the authenticated principal resolved for one request. It is
// loaded fresh from the store per request and never cached between requests.
type SessionData struct {
	// UserID is the SteamID64 of the session's owner.
	UserID uint64

	// Permissions is the permission snapshot taken when the session was
	// created or last refreshed.
	Permissions Permissions

	// ExpiresOn is when the session stops being valid.
	ExpiresOn time.Time
}

// HasExpired reports whether the session's expiry has passed. Callers must
// treat an expired session exactly like a missing one, even when the store
// still returned a row.
func (s *SessionData) HasExpired() bool {
	return !s.ExpiresOn.After(time.Now())
}

// SessionStore persists sessions keyed by their 16-byte SessionID. All
// implementations are safe for concurrent use.
//
// Load returns rows as stored; it does not filter expired sessions. The
// caller re-checks expiry so the invariant does not depend on store clocks.
type SessionStore interface {
	// Create allocates a new SessionID and persists a session for userID
	// expiring after ttl. Fails with ErrSessionIDCollision if the generated
	// ID already exists.
	Create(ctx context.Context, userID uint64, permissions Permissions, ttl time.Duration) (SessionID, error)

	// Load returns the session for id, or ErrSessionNotFound.
	Load(ctx context.Context, id SessionID) (*SessionData, error)

	// Refresh moves the session's expiry, implementing sliding sessions.
	// Refreshing a missing session returns ErrSessionNotFound.
	Refresh(ctx context.Context, id SessionID, expiresOn time.Time) error

	// Revoke deletes the session. Revoking a missing session is not an error.
	Revoke(ctx context.Context, id SessionID) error

	// RevokeAll deletes every session belonging to userID and returns how
	// many were deleted. Used for "logout everywhere".
	RevokeAll(ctx context.Context, userID uint64) (int, error)

	// CleanupExpired removes sessions whose expiry has passed and returns
	// how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Close releases backing resources.
	Close() error
}
