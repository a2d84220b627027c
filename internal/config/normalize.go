package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeEnrichment()
	c.normalizeLLM()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheFile) == "" {
		c.Paths.CacheFile = defaultCacheFile
	}
	if c.Paths.CacheFile, err = expandPath(c.Paths.CacheFile); err != nil {
		return fmt.Errorf("paths.cache_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	c.Providers.UserAgent = strings.TrimSpace(c.Providers.UserAgent)
	if c.Providers.UserAgent == "" {
		c.Providers.UserAgent = defaultUserAgent
	}

	normalizeProvider(&c.Providers.Deezer, defaultDeezerBaseURL, defaultDeezerRPS)
	normalizeProvider(&c.Providers.MusicBrainz, defaultMusicBrainzBaseURL, defaultMusicBrainzRPS)
	normalizeProvider(&c.Providers.AcousticBrainz, defaultAcousticBrainzBaseURL, defaultAcousticBrainzRPS)
	normalizeProvider(&c.Providers.GetSongBPM, defaultGetSongBPMBaseURL, defaultGetSongBPMRPS)
	normalizeProvider(&c.Providers.ITunes, defaultITunesBaseURL, defaultITunesRPS)
	normalizeProvider(&c.Providers.Genius, defaultGeniusBaseURL, defaultGeniusRPS)

	// Environment keys take precedence over file values.
	if value := strings.TrimSpace(os.Getenv("GETSONGBPM_API_KEY")); value != "" {
		c.Providers.GetSongBPM.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("GENIUS_API_KEY")); value != "" {
		c.Providers.Genius.APIKey = value
	}

	c.Providers.TempoChain = normalizeChain(c.Providers.TempoChain, defaultTempoChain())
	c.Providers.ModeChain = normalizeChain(c.Providers.ModeChain, defaultModeChain())
}

func normalizeProvider(p *Provider, baseURL string, rps float64) {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.RequestsPerSecond <= 0 {
		p.RequestsPerSecond = rps
	}
}

func normalizeChain(chain, fallback []string) []string {
	cleaned := make([]string, 0, len(chain))
	seen := make(map[string]struct{}, len(chain))
	for _, name := range chain {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		cleaned = append(cleaned, normalized)
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}

func (c *Config) normalizeEnrichment() {
	if c.Enrichment.RetryMaxAttempts <= 0 {
		c.Enrichment.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if c.Enrichment.RetryBackoffSeconds <= 0 {
		c.Enrichment.RetryBackoffSeconds = defaultRetryBackoffSeconds
	}
	if c.Enrichment.CacheFlushInterval <= 0 {
		c.Enrichment.CacheFlushInterval = defaultCacheFlushInterval
	}
	if c.Enrichment.RequestTimeoutSeconds <= 0 {
		c.Enrichment.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	for _, env := range []string{"CADENCE_LLM_API_KEY", "OPENROUTER_API_KEY", "DEEPSEEK_API_KEY"} {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			c.LLM.APIKey = value
			break
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
