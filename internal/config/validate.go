package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var chainProviderNames = map[string]struct{}{
	"deezer":         {},
	"acousticbrainz": {},
	"getsongbpm":     {},
	"itunes":         {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	if strings.TrimSpace(c.Providers.UserAgent) == "" {
		return errors.New("providers.user_agent must be set")
	}
	if err := validateChain("providers.tempo_chain", c.Providers.TempoChain); err != nil {
		return err
	}
	if err := validateChain("providers.mode_chain", c.Providers.ModeChain); err != nil {
		return err
	}
	return nil
}

func validateChain(field string, chain []string) error {
	for _, name := range chain {
		if _, ok := chainProviderNames[name]; !ok {
			known := make([]string, 0, len(chainProviderNames))
			for provider := range chainProviderNames {
				known = append(known, provider)
			}
			sort.Strings(known)
			return fmt.Errorf("%s contains unknown provider %q (known: %s)", field, name, strings.Join(known, ", "))
		}
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	if err := ensurePositiveMap(map[string]int{
		"enrichment.retry_max_attempts":      c.Enrichment.RetryMaxAttempts,
		"enrichment.cache_flush_interval":    c.Enrichment.CacheFlushInterval,
		"enrichment.request_timeout_seconds": c.Enrichment.RequestTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Enrichment.RetryBackoffSeconds <= 0 {
		return errors.New("enrichment.retry_backoff_seconds must be positive")
	}
	return nil
}

func (c *Config) validateScoring() error {
	if !c.Scoring.HasWeightOverride() {
		return nil
	}
	weights := map[string]float64{
		"scoring.tempo_weight":   c.Scoring.TempoWeight,
		"scoring.mode_weight":    c.Scoring.ModeWeight,
		"scoring.valence_weight": c.Scoring.ValenceWeight,
		"scoring.arousal_weight": c.Scoring.ArousalWeight,
	}
	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sum := 0.0
	for _, key := range keys {
		value := weights[key]
		if value <= 0 {
			return fmt.Errorf("%s must be positive when any scoring weight is overridden", key)
		}
		sum += value
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.6f", sum)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Enabled && strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.api_key must be set when llm.enabled is true (or set CADENCE_LLM_API_KEY)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
