package config

const (
	defaultDataDir   = "~/.local/share/cadence"
	defaultExportDir = "~/.local/share/cadence/exports"
	defaultLogDir    = "~/.local/share/cadence/logs"
	defaultCacheFile = "~/.local/share/cadence/feature_cache.json"

	defaultUserAgent = "cadence/0.1 (music catalog enrichment)"

	defaultDeezerBaseURL         = "https://api.deezer.com"
	defaultMusicBrainzBaseURL    = "https://musicbrainz.org/ws/2"
	defaultAcousticBrainzBaseURL = "https://acousticbrainz.org/api/v1"
	defaultGetSongBPMBaseURL     = "https://api.getsong.co"
	defaultITunesBaseURL         = "https://itunes.apple.com"
	defaultGeniusBaseURL         = "https://api.genius.com"

	defaultDeezerRPS         = 5.0
	defaultMusicBrainzRPS    = 1.0
	defaultAcousticBrainzRPS = 3.0
	defaultGetSongBPMRPS     = 2.0
	defaultITunesRPS         = 5.0
	defaultGeniusRPS         = 2.0

	defaultRetryMaxAttempts      = 2
	defaultRetryBackoffSeconds   = 0.6
	defaultCacheFlushInterval    = 25
	defaultRequestTimeoutSeconds = 15

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMTitle          = "Cadence Annotator"
	defaultLLMTimeoutSeconds = 60

	defaultNotifyRequestTimeout = 10

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

func defaultTempoChain() []string {
	return []string{"deezer", "acousticbrainz", "getsongbpm", "itunes"}
}

func defaultModeChain() []string {
	return []string{"acousticbrainz", "getsongbpm", "itunes"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
			CacheFile: defaultCacheFile,
		},
		Providers: Providers{
			UserAgent:  defaultUserAgent,
			TempoChain: defaultTempoChain(),
			ModeChain:  defaultModeChain(),
			Deezer: Provider{
				Enabled:           true,
				BaseURL:           defaultDeezerBaseURL,
				RequestsPerSecond: defaultDeezerRPS,
			},
			MusicBrainz: Provider{
				Enabled:           true,
				BaseURL:           defaultMusicBrainzBaseURL,
				RequestsPerSecond: defaultMusicBrainzRPS,
			},
			AcousticBrainz: Provider{
				Enabled:           true,
				BaseURL:           defaultAcousticBrainzBaseURL,
				RequestsPerSecond: defaultAcousticBrainzRPS,
			},
			GetSongBPM: Provider{
				Enabled:           true,
				BaseURL:           defaultGetSongBPMBaseURL,
				RequestsPerSecond: defaultGetSongBPMRPS,
			},
			ITunes: Provider{
				Enabled:           true,
				BaseURL:           defaultITunesBaseURL,
				RequestsPerSecond: defaultITunesRPS,
			},
			Genius: Provider{
				Enabled:           true,
				BaseURL:           defaultGeniusBaseURL,
				RequestsPerSecond: defaultGeniusRPS,
			},
		},
		Enrichment: Enrichment{
			RetryMaxAttempts:      defaultRetryMaxAttempts,
			RetryBackoffSeconds:   defaultRetryBackoffSeconds,
			CacheFlushInterval:    defaultCacheFlushInterval,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Imports:        true,
			Enrichment:     true,
			Scoring:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
