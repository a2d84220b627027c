package enrich

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/featurecache"
	"cadence/internal/logging"
	"cadence/internal/services"
	"cadence/internal/sources"
	"cadence/internal/trackkey"
)

// Executor walks provider chains to fill a track's missing features. It
// consults the cache before any provider, probes each chain provider at most
// once per track, and never overwrites a feature that already carries a value.
type Executor struct {
	cache     *featurecache.Cache
	providers map[string]*Provider
	chains    map[catalog.Feature][]string
	attempts  int
	backoff   time.Duration
	logger    *slog.Logger
}

// NewExecutor builds an executor from the configured chains and the supplied
// providers. Chain names without a registered provider are skipped at walk
// time; validation has already rejected unknown names, so an absent provider
// means it was disabled or left without credentials.
func NewExecutor(cfg *config.Config, cache *featurecache.Cache, providers []*Provider, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	byName := make(map[string]*Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Executor{
		cache:     cache,
		providers: byName,
		chains: map[catalog.Feature][]string{
			catalog.FeatureTempo:   cfg.Providers.TempoChain,
			catalog.FeatureMode:    cfg.Providers.ModeChain,
			catalog.FeatureValence: {ProviderLyrics},
			catalog.FeatureArousal: {ProviderLyrics},
		},
		attempts: cfg.Enrichment.RetryMaxAttempts,
		backoff:  time.Duration(cfg.Enrichment.RetryBackoffSeconds * float64(time.Second)),
		logger:   logger.With(logging.String(logging.FieldComponent, "enrich")),
	}
}

// Resolve fills the track's missing features and returns the enriched
// snapshot. The input track is never mutated. Provider failures degrade to
// misses after retries; only context cancellation aborts the walk.
func (e *Executor) Resolve(ctx context.Context, track *catalog.Track) (*Outcome, error) {
	snapshot := track.Clone()
	key := snapshot.NormalizedKey
	if key == "" {
		key = trackkey.Normalize(snapshot.Title, snapshot.Artist)
		snapshot.NormalizedKey = key
	}

	outcome := &Outcome{
		Track:    snapshot,
		Resolved: make(map[catalog.Feature]string),
	}
	e.applyCache(key, snapshot, outcome)

	consulted := make(map[string]bool)
	for _, feature := range catalog.AllFeatures() {
		for _, name := range e.chains[feature] {
			if snapshot.HasFeature(feature) {
				break
			}
			if consulted[name] {
				continue
			}
			provider, ok := e.providers[name]
			if !ok {
				e.logger.Debug("provider unavailable, skipping",
					logging.String(logging.FieldProvider, name),
					logging.String(logging.FieldFeature, string(feature)))
				continue
			}
			consulted[name] = true
			outcome.Probes++

			result, err := e.consult(ctx, provider, *snapshot)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				e.logger.Warn("provider probe failed, treating as miss",
					logging.String(logging.FieldProvider, name),
					logging.String(logging.FieldFeature, string(feature)),
					logging.Error(err))
				continue
			}
			e.merge(snapshot, provider, result, outcome)
		}
	}

	e.writeBack(key, snapshot)
	outcome.Missing = snapshot.MissingFeatures()
	return outcome, nil
}

// applyCache copies cached feature values into the snapshot's empty slots.
func (e *Executor) applyCache(key string, snapshot *catalog.Track, outcome *Outcome) {
	if e.cache == nil {
		return
	}
	entry, ok := e.cache.Lookup(key)
	if !ok {
		return
	}
	if !snapshot.HasFeature(catalog.FeatureTempo) && entry.TempoBPM != nil {
		snapshot.SetFeatureNumber(catalog.FeatureTempo, *entry.TempoBPM, sourceOr(entry.TempoSource))
		outcome.FromCache = append(outcome.FromCache, catalog.FeatureTempo)
	}
	if !snapshot.HasFeature(catalog.FeatureMode) && entry.Mode != "" {
		snapshot.SetFeatureText(catalog.FeatureMode, entry.Mode, sourceOr(entry.ModeSource))
		outcome.FromCache = append(outcome.FromCache, catalog.FeatureMode)
	}
	if !snapshot.HasFeature(catalog.FeatureValence) && entry.LyricValence != nil {
		snapshot.SetFeatureNumber(catalog.FeatureValence, *entry.LyricValence, sourceOr(entry.ValenceSource))
		outcome.FromCache = append(outcome.FromCache, catalog.FeatureValence)
	}
	if !snapshot.HasFeature(catalog.FeatureArousal) && entry.LyricArousal != nil {
		snapshot.SetFeatureNumber(catalog.FeatureArousal, *entry.LyricArousal, sourceOr(entry.ArousalSource))
		outcome.FromCache = append(outcome.FromCache, catalog.FeatureArousal)
	}
}

func sourceOr(source string) string {
	if source == "" {
		return "cache"
	}
	return source
}

// consult paces the provider, runs its probe, and retries transient failures
// with linear backoff. A Retry-After hint longer than the computed delay wins.
func (e *Executor) consult(ctx context.Context, provider *Provider, track catalog.Track) (Result, error) {
	if provider.Limiter != nil {
		if err := provider.Limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
	}
	attempts := e.attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := provider.Probe(ctx, track)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) || attempt == attempts {
			break
		}
		delay := time.Duration(attempt) * e.backoff
		if hint, ok := sources.RetryAfterHint(err); ok && hint > delay {
			delay = hint
		}
		e.logger.Debug("retrying provider probe",
			logging.String(logging.FieldProvider, provider.Name),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
		if err := sleepContext(ctx, delay); err != nil {
			return Result{}, err
		}
	}
	return Result{}, lastErr
}

// merge applies a probe result to the snapshot. Only fields the provider is
// registered for land, and only into empty slots. Lyrics text rides along
// outside the feature slots; cleaned text replaces whatever was there.
func (e *Executor) merge(snapshot *catalog.Track, provider *Provider, result Result, outcome *Outcome) {
	for _, feature := range provider.Fields {
		value, ok := result.Values[feature]
		if !ok || snapshot.HasFeature(feature) {
			continue
		}
		if feature == catalog.FeatureMode {
			snapshot.SetFeatureText(feature, value.Text, provider.Name)
		} else {
			snapshot.SetFeatureNumber(feature, value.Number, provider.Name)
		}
		outcome.Resolved[feature] = provider.Name
		e.logger.Debug("feature resolved",
			logging.String(logging.FieldProvider, provider.Name),
			logging.String(logging.FieldFeature, string(feature)))
	}
	if result.Lyrics != "" {
		snapshot.Lyrics = result.Lyrics
		snapshot.LyricsStatus = result.LyricsStatus
	} else if result.LyricsStatus != "" && snapshot.LyricsStatus == "" {
		snapshot.LyricsStatus = result.LyricsStatus
	}
}

// writeBack stores every scalar feature now present on the snapshot. Put
// merges, so a partial snapshot never erases cached values resolved earlier.
func (e *Executor) writeBack(key string, snapshot *catalog.Track) {
	if e.cache == nil {
		return
	}
	entry := featurecache.Entry{Key: key}
	if snapshot.TempoBPM != nil {
		v := *snapshot.TempoBPM
		entry.TempoBPM = &v
		entry.TempoSource = snapshot.TempoSource
	}
	if snapshot.Mode != nil && *snapshot.Mode != "" {
		entry.Mode = *snapshot.Mode
		entry.ModeSource = snapshot.ModeSource
	}
	if snapshot.LyricValence != nil {
		v := *snapshot.LyricValence
		entry.LyricValence = &v
		entry.ValenceSource = snapshot.ValenceSource
	}
	if snapshot.LyricArousal != nil {
		v := *snapshot.LyricArousal
		entry.LyricArousal = &v
		entry.ArousalSource = snapshot.ArousalSource
	}
	if !entry.HasData() {
		return
	}
	if err := e.cache.Put(entry); err != nil {
		e.logger.Warn("cache write-back failed",
			logging.String("key", key),
			logging.Error(err))
	}
}

// FlushCache persists any buffered cache entries to disk.
func (e *Executor) FlushCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Flush()
}

// retryable reports whether an error is worth another attempt. Transient
// statuses, timeouts, and network timeouts qualify; validation and not-found
// failures do not.
func retryable(err error) bool {
	if errors.Is(err, services.ErrTransient) || errors.Is(err, services.ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
