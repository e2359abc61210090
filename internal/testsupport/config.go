// Package testsupport provides helpers shared by package tests: configs
// backed by temp directories and pre-seeded catalog stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"muraai/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.TranslationCache.Path = filepath.Join(base, "data", "cache.db")
	cfg.Gemini.APIKey = "test"
	cfg.Translate.APIKey = "test"
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithGeminiEndpoint points the Gemini client at a test server.
func WithGeminiEndpoint(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gemini.BaseURL = baseURL
	}
}

// WithTranslateEndpoint points the translation client at a test server.
func WithTranslateEndpoint(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Translate.BaseURL = baseURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
