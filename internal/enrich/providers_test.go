package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cadence/internal/catalog"
	"cadence/internal/lyrics"
	"cadence/internal/sources/acousticbrainz"
	"cadence/internal/sources/deezer"
	"cadence/internal/sources/genius"
	"cadence/internal/sources/getsongbpm"
	"cadence/internal/sources/itunes"
	"cadence/internal/sources/musicbrainz"
	"cadence/internal/testsupport"
)

// Thirty words with several lexicon hits, so sentiment resolves positive.
const upliftingLyric = "Sunlight breaks across the water and we are happy now, every wave a blessing, all this joy will shine on bright horizons while love carries us home through morning air"

// Twenty-nine words with no lexicon hits, so sentiment reads exactly zero.
const neutralLyric = "The river runs past quiet fields while morning mist settles over stone bridges and distant hills where cattle graze beneath tall oaks along winding paths toward the village square"

type fakeDeezer struct {
	track *deezer.Track
	err   error
	calls int
}

func (f *fakeDeezer) SearchTrack(ctx context.Context, title, artist string) (*deezer.Track, error) {
	f.calls++
	return f.track, f.err
}

type fakeMusicBrainz struct {
	recording *musicbrainz.Recording
	err       error
}

func (f *fakeMusicBrainz) SearchRecording(ctx context.Context, title, artist string) (*musicbrainz.Recording, error) {
	return f.recording, f.err
}

type fakeAcousticBrainz struct {
	doc      *acousticbrainz.HighLevel
	err      error
	gotMBIDs []string
}

func (f *fakeAcousticBrainz) GetHighLevel(ctx context.Context, mbid string) (*acousticbrainz.HighLevel, error) {
	f.gotMBIDs = append(f.gotMBIDs, mbid)
	return f.doc, f.err
}

type fakeGetSongBPM struct {
	song *getsongbpm.Song
	err  error
}

func (f *fakeGetSongBPM) Lookup(ctx context.Context, title, artist string) (*getsongbpm.Song, error) {
	return f.song, f.err
}

type fakeITunes struct {
	song          *itunes.Song
	audio         []byte
	searchCalls   int
	downloadCalls int
}

func (f *fakeITunes) SearchSong(ctx context.Context, title, artist string) (*itunes.Song, error) {
	f.searchCalls++
	return f.song, nil
}

func (f *fakeITunes) DownloadPreview(ctx context.Context, previewURL string) ([]byte, error) {
	f.downloadCalls++
	return f.audio, nil
}

type fakeAnalyzer struct {
	tempo    float64
	mode     string
	gotAudio []byte
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, audio []byte) (float64, string, error) {
	f.gotAudio = audio
	return f.tempo, f.mode, nil
}

type fakeGenius struct {
	song          *genius.Song
	lyricsText    string
	searchCalls   int
	lyricsCalls   int
	gotLyricsURLs []string
}

func (f *fakeGenius) SearchSong(ctx context.Context, title, artist string) (*genius.Song, error) {
	f.searchCalls++
	return f.song, nil
}

func (f *fakeGenius) FetchLyrics(ctx context.Context, songURL string) (string, error) {
	f.lyricsCalls++
	f.gotLyricsURLs = append(f.gotLyricsURLs, songURL)
	return f.lyricsText, nil
}

func highLevelDoc(t *testing.T, raw string) *acousticbrainz.HighLevel {
	t.Helper()
	var doc acousticbrainz.HighLevel
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode high-level doc: %v", err)
	}
	return &doc
}

func bpmSong(t *testing.T, raw string) *getsongbpm.Song {
	t.Helper()
	var song getsongbpm.Song
	if err := json.Unmarshal([]byte(raw), &song); err != nil {
		t.Fatalf("decode song: %v", err)
	}
	return &song
}

func testTrack() catalog.Track {
	return catalog.Track{Title: "Weightless", Artist: "Marconi Union"}
}

func TestDeezerProviderResolvesTempo(t *testing.T) {
	client := &fakeDeezer{track: &deezer.Track{ID: 3155776, BPM: 92.5}}
	provider := DeezerProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	value, ok := result.Values[catalog.FeatureTempo]
	if !ok || value.Number != 92.5 {
		t.Fatalf("expected tempo 92.5, got %+v", result.Values)
	}
	if client.calls != 1 {
		t.Fatalf("expected one search call, got %d", client.calls)
	}
}

func TestDeezerProviderZeroTempoIsMiss(t *testing.T) {
	client := &fakeDeezer{track: &deezer.Track{ID: 42, BPM: 0}}
	provider := DeezerProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result for zero tempo, got %+v", result)
	}
}

func TestAcousticBrainzProviderResolvesTempoAndMode(t *testing.T) {
	recordings := &fakeMusicBrainz{recording: &musicbrainz.Recording{ID: "b1a9c0e2"}}
	docs := &fakeAcousticBrainz{doc: highLevelDoc(t, `{
		"rhythm": {"bpm": {"value": 66.2}},
		"tonal": {"key_key": {"value": "A"}, "key_scale": {"value": "minor"}}
	}`)}
	provider := AcousticBrainzProvider(recordings, docs)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := result.Values[catalog.FeatureTempo].Number; got != 66.2 {
		t.Errorf("expected tempo 66.2, got %v", got)
	}
	if got := result.Values[catalog.FeatureMode].Text; got != "Minor" {
		t.Errorf("expected mode Minor, got %q", got)
	}
	if len(docs.gotMBIDs) != 1 || docs.gotMBIDs[0] != "b1a9c0e2" {
		t.Errorf("expected high-level lookup for b1a9c0e2, got %v", docs.gotMBIDs)
	}
}

func TestAcousticBrainzProviderChordsScaleFallback(t *testing.T) {
	recordings := &fakeMusicBrainz{recording: &musicbrainz.Recording{ID: "mbid"}}
	docs := &fakeAcousticBrainz{doc: highLevelDoc(t, `{
		"rhythm": {"bpm": 120},
		"tonal": {"chords_scale": "major"}
	}`)}
	provider := AcousticBrainzProvider(recordings, docs)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := result.Values[catalog.FeatureMode].Text; got != "Major" {
		t.Errorf("expected mode Major from chords scale, got %q", got)
	}
	if got := result.Values[catalog.FeatureTempo].Number; got != 120 {
		t.Errorf("expected tempo 120, got %v", got)
	}
}

func TestAcousticBrainzProviderKeyStringFallback(t *testing.T) {
	recordings := &fakeMusicBrainz{recording: &musicbrainz.Recording{ID: "mbid"}}
	docs := &fakeAcousticBrainz{doc: highLevelDoc(t, `{
		"tonal": {"key_key": "A", "key_scale": "natural minor"}
	}`)}
	provider := AcousticBrainzProvider(recordings, docs)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := result.Values[catalog.FeatureMode].Text; got != "Minor" {
		t.Errorf("expected mode Minor from key string, got %q", got)
	}
	if _, ok := result.Values[catalog.FeatureTempo]; ok {
		t.Error("expected no tempo without a rhythm reading")
	}
}

func TestAcousticBrainzProviderSearchErrorPropagates(t *testing.T) {
	wantErr := errors.New("musicbrainz down")
	recordings := &fakeMusicBrainz{err: wantErr}
	docs := &fakeAcousticBrainz{}
	provider := AcousticBrainzProvider(recordings, docs)

	_, err := provider.Probe(context.Background(), testTrack())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected search error, got %v", err)
	}
	if len(docs.gotMBIDs) != 0 {
		t.Error("high-level lookup should not run after a failed search")
	}
}

func TestGetSongBPMProviderResolvesTempoAndMode(t *testing.T) {
	client := &fakeGetSongBPM{song: bpmSong(t, `{"id":"1","tempo":"60","key":"A minor"}`)}
	provider := GetSongBPMProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := result.Values[catalog.FeatureTempo].Number; got != 60 {
		t.Errorf("expected tempo 60, got %v", got)
	}
	if got := result.Values[catalog.FeatureMode].Text; got != "Minor" {
		t.Errorf("expected mode Minor, got %q", got)
	}
}

func TestGetSongBPMProviderUnparsableKeyIsMiss(t *testing.T) {
	client := &fakeGetSongBPM{song: bpmSong(t, `{"id":"1","key":"C"}`)}
	provider := GetSongBPMProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("bare key name should not resolve a mode, got %+v", result)
	}
}

func TestITunesProviderWithoutAnalyzer(t *testing.T) {
	client := &fakeITunes{song: &itunes.Song{PreviewURL: "https://example.com/clip.m4a"}}
	provider := ITunesProvider(client, nil)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result without an analyzer, got %+v", result)
	}
	if client.searchCalls != 0 {
		t.Error("search should not run without an analyzer")
	}
}

func TestITunesProviderAnalyzesPreview(t *testing.T) {
	audio := []byte("fake-aac-bytes")
	client := &fakeITunes{
		song:  &itunes.Song{TrackID: 9, PreviewURL: "https://example.com/clip.m4a"},
		audio: audio,
	}
	analyzer := &fakeAnalyzer{tempo: 118.2, mode: "Major"}
	provider := ITunesProvider(client, analyzer)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if got := result.Values[catalog.FeatureTempo].Number; got != 118.2 {
		t.Errorf("expected tempo 118.2, got %v", got)
	}
	if got := result.Values[catalog.FeatureMode].Text; got != "Major" {
		t.Errorf("expected mode Major, got %q", got)
	}
	if string(analyzer.gotAudio) != string(audio) {
		t.Error("analyzer did not receive the downloaded preview")
	}
}

func TestITunesProviderNoPreviewIsMiss(t *testing.T) {
	client := &fakeITunes{song: &itunes.Song{TrackID: 9}}
	provider := ITunesProvider(client, &fakeAnalyzer{tempo: 100})

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result without a preview, got %+v", result)
	}
	if client.downloadCalls != 0 {
		t.Error("download should not run without a preview URL")
	}
}

func TestLyricsProviderAnalyzesFetchedText(t *testing.T) {
	client := &fakeGenius{
		song:       &genius.Song{ID: 1, URL: "https://genius.example/weightless"},
		lyricsText: upliftingLyric,
	}
	provider := LyricsProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if result.Lyrics != upliftingLyric {
		t.Errorf("expected cleaned lyrics to round-trip, got %q", result.Lyrics)
	}
	if result.LyricsStatus != lyrics.IntegrityGood {
		t.Errorf("expected GOOD status, got %q", result.LyricsStatus)
	}
	valence, ok := result.Values[catalog.FeatureValence]
	if !ok || valence.Number <= 0 {
		t.Errorf("expected positive valence, got %+v", result.Values)
	}
	arousal, ok := result.Values[catalog.FeatureArousal]
	if !ok || arousal.Number <= 0 {
		t.Errorf("expected positive arousal, got %+v", result.Values)
	}
	if len(client.gotLyricsURLs) != 1 || client.gotLyricsURLs[0] != "https://genius.example/weightless" {
		t.Errorf("expected lyrics fetch for the matched song, got %v", client.gotLyricsURLs)
	}
}

func TestLyricsProviderReusesExistingLyrics(t *testing.T) {
	client := &fakeGenius{}
	provider := LyricsProvider(client)

	track := testTrack()
	track.Lyrics = upliftingLyric

	result, err := provider.Probe(context.Background(), track)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if client.searchCalls != 0 || client.lyricsCalls != 0 {
		t.Error("existing lyrics should not trigger a fetch")
	}
	if _, ok := result.Values[catalog.FeatureValence]; !ok {
		t.Error("expected sentiment from existing lyrics")
	}
}

func TestLyricsProviderShortTextSkipsSentiment(t *testing.T) {
	client := &fakeGenius{
		song:       &genius.Song{URL: "https://genius.example/short"},
		lyricsText: "Just one happy line",
	}
	provider := LyricsProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if result.LyricsStatus != lyrics.IntegrityShort {
		t.Errorf("expected SHORT status, got %q", result.LyricsStatus)
	}
	if len(result.Values) != 0 {
		t.Errorf("short text must not produce sentiment, got %+v", result.Values)
	}
	if result.Lyrics != "Just one happy line" {
		t.Errorf("expected lyrics text preserved, got %q", result.Lyrics)
	}
}

func TestLyricsProviderWithholdsZeroSentiment(t *testing.T) {
	client := &fakeGenius{
		song:       &genius.Song{URL: "https://genius.example/neutral"},
		lyricsText: neutralLyric,
	}
	provider := LyricsProvider(client)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if result.LyricsStatus != lyrics.IntegrityGood {
		t.Errorf("expected GOOD status, got %q", result.LyricsStatus)
	}
	if len(result.Values) != 0 {
		t.Errorf("zero sentiment readings must be withheld, got %+v", result.Values)
	}
}

func TestLyricsProviderNilClientWithoutLyrics(t *testing.T) {
	provider := LyricsProvider(nil)

	result, err := provider.Probe(context.Background(), testTrack())
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty result with no client and no lyrics, got %+v", result)
	}
}

func TestDefaultProvidersRespectsConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	providers, err := DefaultProviders(cfg, nil)
	if err != nil {
		t.Fatalf("DefaultProviders failed: %v", err)
	}
	wantNames := []string{ProviderDeezer, ProviderAcousticBrainz, ProviderITunes, ProviderLyrics}
	if len(providers) != len(wantNames) {
		t.Fatalf("expected %d providers without keys, got %d", len(wantNames), len(providers))
	}
	for i, p := range providers {
		if p.Name != wantNames[i] {
			t.Errorf("provider %d: expected %s, got %s", i, wantNames[i], p.Name)
		}
		if p.Limiter == nil {
			t.Errorf("provider %s: expected a rate limiter", p.Name)
		}
	}
}

func TestDefaultProvidersIncludesKeyedProviders(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithGetSongBPMKey("gsb-key"),
		testsupport.WithGeniusKey("genius-key"))

	providers, err := DefaultProviders(cfg, nil)
	if err != nil {
		t.Fatalf("DefaultProviders failed: %v", err)
	}
	wantNames := []string{ProviderDeezer, ProviderAcousticBrainz, ProviderGetSongBPM, ProviderITunes, ProviderLyrics}
	if len(providers) != len(wantNames) {
		t.Fatalf("expected %d providers with keys, got %d", len(wantNames), len(providers))
	}
	for i, p := range providers {
		if p.Name != wantNames[i] {
			t.Errorf("provider %d: expected %s, got %s", i, wantNames[i], p.Name)
		}
	}
}

func TestDefaultProvidersSkipsDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Providers.Deezer.Enabled = false
	cfg.Providers.MusicBrainz.Enabled = false

	providers, err := DefaultProviders(cfg, nil)
	if err != nil {
		t.Fatalf("DefaultProviders failed: %v", err)
	}
	for _, p := range providers {
		if p.Name == ProviderDeezer || p.Name == ProviderAcousticBrainz {
			t.Errorf("disabled provider %s should not be wired", p.Name)
		}
	}
}
