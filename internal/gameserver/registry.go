// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"github.com/gokz/kz-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Registry holds the registered game servers and verifies their API keys.
// Only bcrypt hashes are kept in memory; plaintext keys exist solely on the
// game servers themselves.
type Registry struct {
	servers []config.GameServerKey
}

// NewRegistry builds a registry from configured server entries.
func NewRegistry(keys []config.GameServerKey) *Registry {
	return &Registry{servers: keys}
}

// Authenticate checks key against every registered server and returns the
// matching server's name. The linear scan is fine at fleet sizes measured in
// hundreds; bcrypt comparison dominates either way.
func (r *Registry) Authenticate(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, server := range r.servers {
		if bcrypt.CompareHashAndPassword([]byte(server.KeyHash), []byte(key)) == nil {
			return server.Name, true
		}
	}
	return "", false
}

// HashKey produces the bcrypt hash stored in configuration for a new server's
// API key.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
