package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/lyrics"
	"cadence/internal/sources/acousticbrainz"
	"cadence/internal/sources/deezer"
	"cadence/internal/sources/genius"
	"cadence/internal/sources/getsongbpm"
	"cadence/internal/sources/itunes"
	"cadence/internal/sources/musicbrainz"
)

// Chain provider names accepted in configuration.
const (
	ProviderDeezer         = "deezer"
	ProviderAcousticBrainz = "acousticbrainz"
	ProviderGetSongBPM     = "getsongbpm"
	ProviderITunes         = "itunes"
	ProviderLyrics         = "lyrics"
)

// Analyzer measures tempo and mode from raw preview audio. The pipeline
// ships no decoder of its own; callers supply an implementation when one is
// available, and the itunes provider reports no data without one.
type Analyzer interface {
	Analyze(ctx context.Context, audio []byte) (tempoBPM float64, mode string, err error)
}

// DeezerProvider resolves tempo from Deezer search hits.
func DeezerProvider(client deezer.Searcher) *Provider {
	return &Provider{
		Name:   ProviderDeezer,
		Fields: []catalog.Feature{catalog.FeatureTempo},
		Probe: func(ctx context.Context, track catalog.Track) (Result, error) {
			match, err := client.SearchTrack(ctx, track.Title, track.Artist)
			if err != nil {
				return Result{}, err
			}
			if !match.HasTempo() {
				return Result{}, nil
			}
			return Result{Values: FieldValues{
				catalog.FeatureTempo: {Number: match.BPM},
			}}, nil
		},
	}
}

// AcousticBrainzProvider resolves mode and tempo from AcousticBrainz
// high-level documents, looked up through a MusicBrainz recording search.
func AcousticBrainzProvider(recordings musicbrainz.Searcher, docs acousticbrainz.Fetcher) *Provider {
	return &Provider{
		Name:   ProviderAcousticBrainz,
		Fields: []catalog.Feature{catalog.FeatureMode, catalog.FeatureTempo},
		Probe: func(ctx context.Context, track catalog.Track) (Result, error) {
			recording, err := recordings.SearchRecording(ctx, track.Title, track.Artist)
			if err != nil {
				return Result{}, err
			}
			doc, err := docs.GetHighLevel(ctx, recording.ID)
			if err != nil {
				return Result{}, err
			}
			values := FieldValues{}
			if bpm, ok := doc.BPM(); ok {
				values[catalog.FeatureTempo] = Value{Number: bpm}
			}
			if scale, ok := doc.Scale(); ok {
				if mode, ok := ModeFromScale(scale); ok {
					values[catalog.FeatureMode] = Value{Text: mode}
				}
			}
			if _, resolved := values[catalog.FeatureMode]; !resolved {
				if key, ok := doc.KeyString(); ok {
					if mode, ok := ModeFromKeyString(key); ok {
						values[catalog.FeatureMode] = Value{Text: mode}
					}
				}
			}
			if len(values) == 0 {
				return Result{}, nil
			}
			return Result{Values: values}, nil
		},
	}
}

// GetSongBPMProvider resolves tempo and mode from GetSongBPM lookups.
func GetSongBPMProvider(client getsongbpm.Looker) *Provider {
	return &Provider{
		Name:   ProviderGetSongBPM,
		Fields: []catalog.Feature{catalog.FeatureTempo, catalog.FeatureMode},
		Probe: func(ctx context.Context, track catalog.Track) (Result, error) {
			song, err := client.Lookup(ctx, track.Title, track.Artist)
			if err != nil {
				return Result{}, err
			}
			values := FieldValues{}
			if tempo, ok := song.TempoBPM(); ok {
				values[catalog.FeatureTempo] = Value{Number: tempo}
			}
			if key, ok := song.KeyString(); ok {
				if mode, ok := ModeFromKeyString(key); ok {
					values[catalog.FeatureMode] = Value{Text: mode}
				}
			}
			if len(values) == 0 {
				return Result{}, nil
			}
			return Result{Values: values}, nil
		},
	}
}

// ITunesProvider resolves tempo and mode by analyzing a track's preview
// clip with the supplied analyzer.
func ITunesProvider(client itunes.Searcher, analyzer Analyzer) *Provider {
	return &Provider{
		Name:   ProviderITunes,
		Fields: []catalog.Feature{catalog.FeatureTempo, catalog.FeatureMode},
		Probe: func(ctx context.Context, track catalog.Track) (Result, error) {
			if analyzer == nil {
				return Result{}, nil
			}
			song, err := client.SearchSong(ctx, track.Title, track.Artist)
			if err != nil {
				return Result{}, err
			}
			if !song.HasPreview() {
				return Result{}, nil
			}
			audio, err := client.DownloadPreview(ctx, song.PreviewURL)
			if err != nil {
				return Result{}, err
			}
			tempo, mode, err := analyzer.Analyze(ctx, audio)
			if err != nil {
				return Result{}, fmt.Errorf("analyze preview: %w", err)
			}
			values := FieldValues{}
			if tempo > 0 {
				values[catalog.FeatureTempo] = Value{Number: tempo}
			}
			if mode = strings.TrimSpace(mode); mode != "" {
				values[catalog.FeatureMode] = Value{Text: mode}
			}
			if len(values) == 0 {
				return Result{}, nil
			}
			return Result{Values: values}, nil
		},
	}
}

// LyricsProvider resolves valence and arousal by fetching lyrics, cleaning
// them, classifying integrity, and running sentiment analysis. Tracks that
// already carry lyrics text are analyzed without a fetch. Exact-zero
// sentiment readings are withheld; earlier tooling wrote zeros for unmatched
// text, so downstream treats them as artifacts.
func LyricsProvider(client genius.Fetcher) *Provider {
	return &Provider{
		Name:   ProviderLyrics,
		Fields: []catalog.Feature{catalog.FeatureValence, catalog.FeatureArousal},
		Probe: func(ctx context.Context, track catalog.Track) (Result, error) {
			text := strings.TrimSpace(track.Lyrics)
			if text == "" {
				if client == nil {
					return Result{}, nil
				}
				song, err := client.SearchSong(ctx, track.Title, track.Artist)
				if err != nil {
					return Result{}, err
				}
				text, err = client.FetchLyrics(ctx, song.URL)
				if err != nil {
					return Result{}, err
				}
			}
			cleaned := lyrics.Clean(text)
			status := lyrics.ClassifyIntegrity(cleaned)
			result := Result{Lyrics: cleaned, LyricsStatus: status}
			if !lyrics.Analyzable(status) {
				return result, nil
			}
			sentiment := lyrics.Analyze(cleaned)
			values := FieldValues{}
			if sentiment.Valence != 0 {
				values[catalog.FeatureValence] = Value{Number: sentiment.Valence}
			}
			if sentiment.Arousal != 0 {
				values[catalog.FeatureArousal] = Value{Number: sentiment.Arousal}
			}
			if len(values) > 0 {
				result.Values = values
			}
			return result, nil
		},
	}
}

// DefaultProviders wires the configured source clients into chain providers.
// Disabled providers and keyed providers without credentials are left out,
// so chains skip them without probing.
func DefaultProviders(cfg *config.Config, analyzer Analyzer) ([]*Provider, error) {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Enrichment.RequestTimeoutSeconds) * time.Second,
	}
	providers := make([]*Provider, 0, 5)

	if cfg.Providers.Deezer.Enabled {
		client, err := deezer.New(cfg.Providers.Deezer.BaseURL, deezer.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("deezer client: %w", err)
		}
		provider := DeezerProvider(client)
		provider.Limiter = newLimiter(cfg.Providers.Deezer.RequestsPerSecond)
		providers = append(providers, provider)
	}

	if cfg.Providers.AcousticBrainz.Enabled && cfg.Providers.MusicBrainz.Enabled {
		recordings, err := musicbrainz.New(cfg.Providers.MusicBrainz.BaseURL, cfg.Providers.UserAgent,
			musicbrainz.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("musicbrainz client: %w", err)
		}
		docs, err := acousticbrainz.New(cfg.Providers.AcousticBrainz.BaseURL,
			acousticbrainz.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("acousticbrainz client: %w", err)
		}
		provider := AcousticBrainzProvider(recordings, docs)
		// Each probe issues one MusicBrainz call, so the stricter of the two
		// configured rates governs the pair.
		provider.Limiter = newLimiter(minRate(
			cfg.Providers.MusicBrainz.RequestsPerSecond,
			cfg.Providers.AcousticBrainz.RequestsPerSecond))
		providers = append(providers, provider)
	}

	if cfg.Providers.GetSongBPM.Enabled && cfg.Providers.GetSongBPM.APIKey != "" {
		client, err := getsongbpm.New(cfg.Providers.GetSongBPM.APIKey, cfg.Providers.GetSongBPM.BaseURL,
			getsongbpm.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("getsongbpm client: %w", err)
		}
		provider := GetSongBPMProvider(client)
		provider.Limiter = newLimiter(cfg.Providers.GetSongBPM.RequestsPerSecond)
		providers = append(providers, provider)
	}

	if cfg.Providers.ITunes.Enabled {
		client, err := itunes.New(cfg.Providers.ITunes.BaseURL, itunes.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("itunes client: %w", err)
		}
		provider := ITunesProvider(client, analyzer)
		provider.Limiter = newLimiter(cfg.Providers.ITunes.RequestsPerSecond)
		providers = append(providers, provider)
	}

	var lyricsClient genius.Fetcher
	if cfg.Providers.Genius.Enabled && cfg.Providers.Genius.APIKey != "" {
		client, err := genius.New(cfg.Providers.Genius.APIKey, cfg.Providers.Genius.BaseURL,
			genius.WithHTTPClient(httpClient), genius.WithUserAgent(cfg.Providers.UserAgent))
		if err != nil {
			return nil, fmt.Errorf("genius client: %w", err)
		}
		lyricsClient = client
	}
	lyricsProvider := LyricsProvider(lyricsClient)
	lyricsProvider.Limiter = newLimiter(cfg.Providers.Genius.RequestsPerSecond)
	providers = append(providers, lyricsProvider)

	return providers, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func minRate(a, b float64) float64 {
	if a <= 0 {
		return b
	}
	if b <= 0 || a < b {
		return a
	}
	return b
}
