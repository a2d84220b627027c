package testsupport

import (
	"path/filepath"
	"testing"

	"cadence/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheFile = filepath.Join(base, "data", "feature_cache.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGetSongBPMKey sets the GetSongBPM API key on the test config.
func WithGetSongBPMKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.GetSongBPM.APIKey = key
	}
}

// WithGeniusKey sets the Genius API key on the test config.
func WithGeniusKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Providers.Genius.APIKey = key
	}
}

// WithAnnotation enables LLM annotation with the supplied key.
func WithAnnotation(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Enabled = true
		b.cfg.LLM.APIKey = key
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
