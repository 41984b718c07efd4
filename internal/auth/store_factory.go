// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"fmt"

	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/logging"
)

// NewSessionStore constructs the session store selected by configuration.
// Config validation has already checked that backend-specific settings are
// present.
func NewSessionStore(ctx context.Context, cfg config.AuthConfig) (SessionStore, error) {
	switch cfg.Store {
	case "memory":
		logging.Warn().Msg("using in-memory session store, sessions will not survive restarts")
		return NewMemorySessionStore(), nil

	case "badger":
		store, err := OpenBadgerSessionStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.BadgerPath).Msg("badger session store opened")
		return store, nil

	case "postgres":
		store, err := OpenPostgresSessionStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logging.Info().Msg("postgres session store connected")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown session store backend %q", cfg.Store)
	}
}
