// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"time"

	"github.com/gokz/kz-api/internal/auth"
	"github.com/gokz/kz-api/internal/logging"
)

// SessionCleanupService periodically sweeps expired sessions from the store.
// Expired sessions are already unusable (the middleware re-checks expiry);
// the sweep just reclaims storage.
type SessionCleanupService struct {
	store    auth.SessionStore
	interval time.Duration
}

// NewSessionCleanupService sweeps store every interval.
func NewSessionCleanupService(store auth.SessionStore, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionCleanupService{store: store, interval: interval}
}

// String implements fmt.Stringer for supervisor logs.
func (s *SessionCleanupService) String() string { return "session-cleanup" }

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := s.store.CleanupExpired(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if count > 0 {
				logging.Info().Int("count", count).Msg("expired sessions swept")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
