// Package config loads workspace configuration from
// .specgraph/config.toml, overridden by SPECGRAPH_* environment
// variables. Everything has a working default; a bare `sg init` needs no
// config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the merged workspace configuration.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	NATS     NATSConfig     `toml:"nats"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// StoreConfig selects and locates the graph store backend.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "postgres".
	Backend string `toml:"backend"`
	// Path is the sqlite database file, relative paths resolved against
	// the workspace root.
	Path string `toml:"path"`
	// URL is the postgres connection string.
	URL string `toml:"url"`
}

// NATSConfig enables lifecycle event publishing when URL is set.
type NATSConfig struct {
	URL string `toml:"url"`
}

// SnapshotConfig configures `sg backup` S3 uploads. Bucket empty means
// local-file snapshots only.
type SnapshotConfig struct {
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
}

// Path returns the config file location for a workspace root.
func Path(root string) string {
	return filepath.Join(root, ".specgraph", "config.toml")
}

// Load reads the workspace config file (missing file is fine) and applies
// environment overrides.
func Load(root string) (*Config, error) {
	cfg := &Config{
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    filepath.Join(root, ".specgraph", "graph.db"),
		},
	}

	path := Path(root)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(root, ".specgraph", "graph.db")
	} else if !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(root, cfg.Store.Path)
	}

	applyEnv(cfg)

	if cfg.Store.Backend != "sqlite" && cfg.Store.Backend != "postgres" {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "postgres" && cfg.Store.URL == "" {
		return nil, fmt.Errorf("store backend postgres requires a database url")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SPECGRAPH_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("SPECGRAPH_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SPECGRAPH_DATABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := os.Getenv("SPECGRAPH_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SPECGRAPH_S3_BUCKET"); v != "" {
		cfg.Snapshot.Bucket = v
	}
	if v := os.Getenv("SPECGRAPH_S3_PREFIX"); v != "" {
		cfg.Snapshot.Prefix = v
	}
	if v := os.Getenv("SPECGRAPH_S3_ENDPOINT"); v != "" {
		cfg.Snapshot.Endpoint = v
	}
	if v := os.Getenv("SPECGRAPH_S3_REGION"); v != "" {
		cfg.Snapshot.Region = v
	}
}
