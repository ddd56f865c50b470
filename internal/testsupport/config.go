// Package testsupport provides shared helpers for package tests: canned
// configurations backed by temp directories and fixture file creation.
package testsupport

import (
	"path/filepath"
	"testing"

	"importarr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Whisparr.APIKey = "test-whisparr-key"
	cfg.Stash.APIKey = "test-stash-key"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Import.Folder = filepath.Join(base, "import")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMode sets the engine selection mode on the test config.
func WithMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.General.Mode = mode
	}
}

// WithNtfyTopic points notifications at the given ntfy endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
