// Package config loads the registry's settings from a TOML file found at
// one of a short list of well-known locations (spec.md §6).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/quay/cargo-registry/internal/registry/index"
)

// Settings is the top-level configuration for the registry server.
type Settings struct {
	Port     uint16   `toml:"port"`
	Index    Index    `toml:"index"`
	Storage  Storage  `toml:"storage"`
	Database Database `toml:"database"`
	Tracing  Tracing  `toml:"tracing"`
}

// Database configures the connection pool reserved for future owner/user
// data (spec.md §1, out of scope except as an interface). Empty ConnString
// disables it.
type Database struct {
	ConnString string `toml:"conn_string"`
}

// Tracing configures the optional OTLP/HTTP trace exporter.
type Tracing struct {
	OTLP OTLP `toml:"otlp"`
}

// OTLP holds the collector endpoint. Empty Endpoint disables tracing.
type OTLP struct {
	Endpoint string `toml:"endpoint"`
}

// Index describes where the git-backed crate index lives and the config.json
// payload served alongside it.
type Index struct {
	Location string      `toml:"location"`
	Config   index.Config `toml:"config"`
}

// Storage describes where published tarball blobs are kept.
type Storage struct {
	Location string `toml:"location"`
}

// searchPaths returns the locations load checks, in order, for app name.
func searchPaths(app string) []string {
	return []string{
		fmt.Sprintf("/etc/%s/config.toml", app),
		fmt.Sprintf("/app/%s.toml", app),
		fmt.Sprintf("%s.toml", app),
	}
}

// Load reads settings from the first of the well-known locations that
// exists: /etc/<app>/config.toml, /app/<app>.toml, then ./<app>.toml.
func Load(app string) (*Settings, error) {
	for _, path := range searchPaths(app) {
		buf, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}

		var s Settings
		if _, err := toml.Decode(string(buf), &s); err != nil {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
		return &s, nil
	}
	return nil, fmt.Errorf("config: no settings file found in %v", searchPaths(app))
}
