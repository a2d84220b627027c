package getsongbpm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cadence/internal/sources"
)

// flexString tolerates fields the API serves as either JSON strings or bare
// numbers.
type flexString struct {
	Value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		f.Value = strings.TrimSpace(plain)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = num.String()
		return nil
	}
	f.Value = ""
	return nil
}

// Artist identifies the performer attached to a search hit.
type Artist struct {
	Name string `json:"name"`
}

// Song represents a single GetSongBPM search hit.
type Song struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	URI     string     `json:"uri"`
	Artist  Artist     `json:"artist"`
	Tempo   flexString `json:"tempo"`
	BPM     flexString `json:"bpm"`
	Key     flexString `json:"key"`
	SongKey flexString `json:"song_key"`
}

// TempoBPM returns the tempo reading, preferring the tempo field over bpm.
func (s *Song) TempoBPM() (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, raw := range []string{s.Tempo.Value, s.BPM.Value} {
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			continue
		}
		return value, true
	}
	return 0, false
}

// KeyString returns the musical key, preferring key over song_key.
func (s *Song) KeyString() (string, bool) {
	if s == nil {
		return "", false
	}
	if s.Key.Value != "" {
		return s.Key.Value, true
	}
	if s.SongKey.Value != "" {
		return s.SongKey.Value, true
	}
	return "", false
}

// lookupResponse carries both result envelope spellings. Either field may
// also hold a non-array error object, which reads as no hits.
type lookupResponse struct {
	Search json.RawMessage `json:"search"`
	Result json.RawMessage `json:"result"`
}

func decodeSongs(raw json.RawMessage) []Song {
	if len(raw) == 0 {
		return nil
	}
	var songs []Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil
	}
	return songs
}

// Looker defines the GetSongBPM operations used by enrichment.
type Looker interface {
	Lookup(ctx context.Context, title, artist string) (*Song, error)
}

// Client provides access to the GetSongBPM search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Looker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a GetSongBPM client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("getsongbpm api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("getsongbpm base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup returns the best GetSongBPM match for a title and artist pair.
func (c *Client) Lookup(ctx context.Context, title, artist string) (*Song, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return nil, errors.New("title and artist must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/")
	if err != nil {
		return nil, fmt.Errorf("parse getsongbpm url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("type", "both")
	params.Set("lookup", title+" "+artist)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.NewStatusError("getsongbpm", resp, latency)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode getsongbpm response: %w", err)
	}
	songs := decodeSongs(payload.Search)
	if len(songs) == 0 {
		songs = decodeSongs(payload.Result)
	}
	if len(songs) == 0 {
		return nil, sources.NoMatch("getsongbpm", title+" / "+artist)
	}
	return &songs[0], nil
}
