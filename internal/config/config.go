// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package config loads and validates the kz-api configuration from a YAML
// file and environment variables (koanf, KZ_ prefix).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for the kz-api process.
type Config struct {
	Server     ServerConfig     `koanf:"server" validate:"required"`
	Auth       AuthConfig       `koanf:"auth" validate:"required"`
	GameServer GameServerConfig `koanf:"gameserver" validate:"required"`
	Logging    LoggingConfig    `koanf:"logging"`
	CORS       CORSConfig       `koanf:"cors"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig configures session cookies and the session store backend.
type AuthConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string `koanf:"cookie_name" validate:"required"`

	// CookieDomain restricts the cookie to a domain; empty means host-only.
	CookieDomain string `koanf:"cookie_domain"`

	// CookiePath is the path scope of the session cookie.
	CookiePath string `koanf:"cookie_path"`

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool `koanf:"cookie_secure"`

	// SessionTTL is how long a freshly created or refreshed session lives.
	SessionTTL time.Duration `koanf:"session_ttl" validate:"required"`

	// SlidingSessions extends session expiry on each authenticated request.
	SlidingSessions bool `koanf:"sliding_sessions"`

	// Store selects the session store backend: memory, badger, or postgres.
	Store string `koanf:"store" validate:"oneof=memory badger postgres"`

	// BadgerPath is the on-disk directory for the badger store.
	BadgerPath string `koanf:"badger_path"`

	// PostgresDSN is the connection string for the postgres store.
	PostgresDSN string `koanf:"postgres_dsn"`

	// CleanupInterval is how often expired sessions are swept from the store.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// GameServerConfig configures the game-server WebSocket protocol.
type GameServerConfig struct {
	// HandshakeTimeout bounds how long a freshly upgraded connection may wait
	// before sending its hello message.
	HandshakeTimeout time.Duration `koanf:"handshake_timeout" validate:"required"`

	// HeartbeatInterval is the deadline for heartbeat-class messages once the
	// connection is established. A connection that stays silent longer than
	// this is closed.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval" validate:"required"`

	// MaxMessageSize limits inbound frame size in bytes.
	MaxMessageSize int64 `koanf:"max_message_size" validate:"min=1"`

	// MessageRate and MessageBurst bound inbound message throughput per
	// connection (token bucket).
	MessageRate  float64 `koanf:"message_rate" validate:"min=0"`
	MessageBurst int     `koanf:"message_burst" validate:"min=1"`

	// Keys lists the registered game servers and their API key hashes.
	Keys []GameServerKey `koanf:"keys" validate:"dive"`
}

// GameServerKey identifies a registered game server. KeyHash is a bcrypt hash
// of the server's API key; plaintext keys are never stored in config.
type GameServerKey struct {
	Name    string `koanf:"name" validate:"required"`
	KeyHash string `koanf:"key_hash" validate:"required"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// CORSConfig configures cross-origin access for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// RateLimitConfig configures per-client HTTP rate limits.
type RateLimitConfig struct {
	// Requests per Window for general API routes.
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"required"`

	// AuthRequests per AuthWindow for authentication routes.
	AuthRequests int           `koanf:"auth_requests" validate:"min=1"`
	AuthWindow   time.Duration `koanf:"auth_window" validate:"required"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            42069,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			CookieName:      "kz-auth",
			CookiePath:      "/",
			CookieSecure:    true,
			SessionTTL:      7 * 24 * time.Hour,
			SlidingSessions: true,
			Store:           "memory",
			BadgerPath:      "/data/sessions",
			CleanupInterval: time.Hour,
		},
		GameServer: GameServerConfig{
			HandshakeTimeout:  30 * time.Second,
			HeartbeatInterval: 60 * time.Second,
			MaxMessageSize:    64 * 1024,
			MessageRate:       20,
			MessageBurst:      40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		RateLimit: RateLimitConfig{
			Requests:     100,
			Window:       time.Minute,
			AuthRequests: 10,
			AuthWindow:   time.Minute,
		},
	}
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	switch c.Auth.Store {
	case "badger":
		if c.Auth.BadgerPath == "" {
			return fmt.Errorf("auth.badger_path is required when auth.store is badger")
		}
	case "postgres":
		if c.Auth.PostgresDSN == "" {
			return fmt.Errorf("auth.postgres_dsn is required when auth.store is postgres")
		}
	}

	if c.GameServer.HandshakeTimeout <= 0 {
		return fmt.Errorf("gameserver.handshake_timeout must be positive")
	}
	if c.GameServer.HeartbeatInterval <= 0 {
		return fmt.Errorf("gameserver.heartbeat_interval must be positive")
	}

	return nil
}
