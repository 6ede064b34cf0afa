package testsupport

import (
	"path/filepath"
	"testing"

	"redraft/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Rewrite.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRewriteBaseURL points the rewrite client at a test server.
func WithRewriteBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rewrite.BaseURL = url
	}
}

// WithTransformWorkers overrides the worker count on the test config.
func WithTransformWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.TransformWorkers = n
	}
}
