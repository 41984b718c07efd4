// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore keeps sessions in a map. Suitable for development and
// tests; production deployments use the badger or postgres store.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[SessionID]*SessionData
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[SessionID]*SessionData),
	}
}

// Create implements SessionStore.
func (s *MemorySessionStore) Create(ctx context.Context, userID uint64, permissions Permissions, ttl time.Duration) (SessionID, error) {
	id, err := NewSessionID()
	if err != nil {
		return SessionID{}, newStoreError("create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		return SessionID{}, ErrSessionIDCollision
	}

	s.sessions[id] = &SessionData{
		UserID:      userID,
		Permissions: permissions,
		ExpiresOn:   time.Now().Add(ttl),
	}
	return id, nil
}

// Load implements SessionStore. Expired rows are returned as stored.
func (s *MemorySessionStore) Load(ctx context.Context, id SessionID) (*SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := *data
	return &copied, nil
}

// Refresh implements SessionStore.
func (s *MemorySessionStore) Refresh(ctx context.Context, id SessionID, expiresOn time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	data.ExpiresOn = expiresOn
	return nil
}

// Revoke implements SessionStore.
func (s *MemorySessionStore) Revoke(ctx context.Context, id SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// RevokeAll implements SessionStore.
func (s *MemorySessionStore) RevokeAll(ctx context.Context, userID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, data := range s.sessions {
		if data.UserID == userID {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// CleanupExpired implements SessionStore.
func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, data := range s.sessions {
		if data.HasExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

// Close implements SessionStore.
func (s *MemorySessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[SessionID]*SessionData)
	return nil
}
