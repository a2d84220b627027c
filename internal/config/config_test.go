package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cadence/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndHonorsEnvKeys(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GETSONGBPM_API_KEY", "bpm-key")
	t.Setenv("GENIUS_API_KEY", "genius-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cadence")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.CacheFile != filepath.Join(wantData, "feature_cache.json") {
		t.Fatalf("unexpected cache file: %q", cfg.Paths.CacheFile)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Providers.GetSongBPM.APIKey != "bpm-key" {
		t.Fatalf("expected GetSongBPM key from env, got %q", cfg.Providers.GetSongBPM.APIKey)
	}
	if cfg.Providers.Genius.APIKey != "genius-key" {
		t.Fatalf("expected Genius key from env, got %q", cfg.Providers.Genius.APIKey)
	}
	if got := cfg.Providers.TempoChain; len(got) != 4 || got[0] != "deezer" || got[3] != "itunes" {
		t.Fatalf("unexpected tempo chain: %v", got)
	}
	if got := cfg.Providers.ModeChain; len(got) != 3 || got[0] != "acousticbrainz" {
		t.Fatalf("unexpected mode chain: %v", got)
	}
	if cfg.Providers.MusicBrainz.RequestsPerSecond != 1.0 {
		t.Fatalf("unexpected MusicBrainz pacing: %f", cfg.Providers.MusicBrainz.RequestsPerSecond)
	}
	if cfg.Enrichment.CacheFlushInterval != 25 {
		t.Fatalf("unexpected cache flush interval: %d", cfg.Enrichment.CacheFlushInterval)
	}
	if cfg.LLM.Enabled {
		t.Fatal("expected annotation disabled by default")
	}
	if cfg.Scoring.HasWeightOverride() {
		t.Fatal("expected no scoring weight override by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.ExportDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cadence.toml")

	type payload struct {
		Providers struct {
			TempoChain []string `toml:"tempo_chain"`
			GetSongBPM struct {
				APIKey string `toml:"api_key"`
			} `toml:"getsongbpm"`
		} `toml:"providers"`
		Enrichment struct {
			CacheFlushInterval int `toml:"cache_flush_interval"`
		} `toml:"enrichment"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Providers.TempoChain = []string{"Acousticbrainz", "deezer", "deezer"}
	custom.Providers.GetSongBPM.APIKey = "abc123"
	custom.Enrichment.CacheFlushInterval = 10
	custom.Logging.Format = "json"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Providers.GetSongBPM.APIKey != "abc123" {
		t.Fatalf("expected GetSongBPM key from file, got %q", cfg.Providers.GetSongBPM.APIKey)
	}
	wantChain := []string{"acousticbrainz", "deezer"}
	if got := cfg.Providers.TempoChain; len(got) != len(wantChain) || got[0] != wantChain[0] || got[1] != wantChain[1] {
		t.Fatalf("expected lowercased deduplicated chain %v, got %v", wantChain, got)
	}
	if cfg.Enrichment.CacheFlushInterval != 10 {
		t.Fatalf("expected cache flush interval 10, got %d", cfg.Enrichment.CacheFlushInterval)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %q", cfg.Logging.Format)
	}
	// Unset sections keep defaults.
	if cfg.Providers.Deezer.BaseURL == "" {
		t.Fatal("expected default Deezer base URL")
	}
	if cfg.Enrichment.RetryMaxAttempts != 2 {
		t.Fatalf("expected default retry attempts, got %d", cfg.Enrichment.RetryMaxAttempts)
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cadence.toml")

	type payload struct {
		Providers struct {
			GetSongBPM struct {
				APIKey string `toml:"api_key"`
			} `toml:"getsongbpm"`
			Genius struct {
				APIKey string `toml:"api_key"`
			} `toml:"genius"`
		} `toml:"providers"`
		LLM struct {
			APIKey string `toml:"api_key"`
		} `toml:"llm"`
	}
	custom := payload{}
	custom.Providers.GetSongBPM.APIKey = "file-bpm"
	custom.Providers.Genius.APIKey = "file-genius"
	custom.LLM.APIKey = "file-llm"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("GETSONGBPM_API_KEY", "env-bpm")
	t.Setenv("GENIUS_API_KEY", "env-genius")
	t.Setenv("CADENCE_LLM_API_KEY", "env-llm")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Providers.GetSongBPM.APIKey != "env-bpm" {
		t.Errorf("expected GetSongBPM key from env, got %q", cfg.Providers.GetSongBPM.APIKey)
	}
	if cfg.Providers.Genius.APIKey != "env-genius" {
		t.Errorf("expected Genius key from env, got %q", cfg.Providers.Genius.APIKey)
	}
	if cfg.LLM.APIKey != "env-llm" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_getsongbpm_api_key_here") {
		t.Fatalf("sample config missing placeholder GetSongBPM key: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "cadence") {
		t.Fatalf("expected data dir to contain cadence, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Enrichment.CacheFlushInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive flush interval")
	}

	cfg = config.Default()
	cfg.Providers.TempoChain = []string{"deezer", "spotify"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown chain provider")
	}

	cfg = config.Default()
	cfg.Scoring.TempoWeight = 0.5
	cfg.Scoring.ModeWeight = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when partial weight override leaves zeros")
	}

	cfg = config.Default()
	cfg.Scoring.TempoWeight = 0.4
	cfg.Scoring.ModeWeight = 0.3
	cfg.Scoring.ValenceWeight = 0.2
	cfg.Scoring.ArousalWeight = 0.2
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when weights do not sum to 1")
	}

	cfg = config.Default()
	cfg.Scoring.TempoWeight = 0.4
	cfg.Scoring.ModeWeight = 0.3
	cfg.Scoring.ValenceWeight = 0.2
	cfg.Scoring.ArousalWeight = 0.1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid weight override, got %v", err)
	}

	cfg = config.Default()
	cfg.LLM.Enabled = true
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when annotation enabled without API key")
	}

	cfg = config.Default()
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive notification timeout")
	}
}
