// Package config holds the git-flow-mcp server configuration: a JSON file in
// the state directory plus environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// Config is the persisted server configuration. Zero values fall back to
// Default().
type Config struct {
	// Remote is the remote name used for fetch/push and upstream checks.
	Remote string `json:"remote"`
	// DefaultBase is the branch new work branches are created from when no
	// base is given. Empty means auto-detect (main, then master).
	DefaultBase string `json:"default_base,omitempty"`
	// AutoResolve is the default conflict policy for sync_work when the
	// caller does not pass one: none, ours, theirs, or smart.
	AutoResolve string `json:"auto_resolve"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Remote:      "origin",
		AutoResolve: "none",
	}
}

// StateDir resolves the server state directory: $GIT_FLOW_DIR, falling back
// to ~/.git-flow-mcp.
func StateDir() (string, error) {
	if dir := os.Getenv("GIT_FLOW_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".git-flow-mcp"), nil
}

// Load reads the configuration from dir. A missing file returns the
// defaults, not an error. Fields left empty in the file also fall back to
// their defaults.
func Load(dir string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.AutoResolve == "" {
		cfg.AutoResolve = "none"
	}
	return cfg, nil
}

// EnsureDefault loads the configuration from dir, writing the default
// config file first when none exists yet so operators have a file to edit.
func EnsureDefault(dir string) (Config, error) {
	if _, err := os.Stat(filepath.Join(dir, configFileName)); os.IsNotExist(err) {
		cfg := Default()
		if err := Save(dir, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return Load(dir)
}

// Save persists the configuration to dir atomically.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, configFileName), data, 0600)
}

// writeFileAtomic writes data to a sibling temp file and renames it into
// place, so a crash mid-write never leaves a truncated config behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
