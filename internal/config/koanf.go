// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kz-api/config.yaml",
	"/etc/kz-api/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "KZ_CONFIG"

// envPrefix namespaces the environment variables that override config values,
// e.g. KZ_SERVER_PORT overrides server.port.
const envPrefix = "KZ_"

// Load reads configuration with the following precedence, lowest first:
// built-in defaults, config file, environment variables.
func Load() (*Config, error) {
	path := os.Getenv(ConfigPathEnvVar)
	if path == "" {
		for _, candidate := range DefaultConfigPaths {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from the given file path. An empty path skips
// the file layer; defaults and environment variables still apply.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envToKey maps KZ_SERVER_PORT to server.port. Section and field names never
// contain underscores ambiguously enough to need escaping, except multi-word
// fields which use the first underscore as the section delimiter.
func envToKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	// First segment is the section; the remainder is the field name.
	if i := strings.Index(s, "_"); i >= 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}
