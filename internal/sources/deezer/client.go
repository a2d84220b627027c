package deezer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cadence/internal/sources"
)

// Artist identifies the performer attached to a search hit.
type Artist struct {
	Name string `json:"name"`
}

// Track represents a single Deezer search match.
type Track struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Link   string  `json:"link"`
	BPM    float64 `json:"bpm"`
	Artist Artist  `json:"artist"`
}

// HasTempo reports whether the track carries a usable tempo reading. Deezer
// stores zero when no tempo was measured.
func (t *Track) HasTempo() bool {
	return t != nil && t.BPM > 0
}

type searchResponse struct {
	Data []Track `json:"data"`
}

// Searcher defines the Deezer operations used by enrichment.
type Searcher interface {
	SearchTrack(ctx context.Context, title, artist string) (*Track, error)
}

// Client provides access to the Deezer search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

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

// New creates a Deezer client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("deezer base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchTrack returns the best Deezer match for a title and artist pair.
func (c *Client) SearchTrack(ctx context.Context, title, artist string) (*Track, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return nil, errors.New("title and artist must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse deezer url: %w", err)
	}
	params := url.Values{}
	params.Set("q", fmt.Sprintf("track:\"%s\" artist:\"%s\"", title, artist))
	params.Set("limit", "1")
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
		return nil, sources.NewStatusError("deezer", resp, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode deezer response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, sources.NoMatch("deezer", title+" / "+artist)
	}
	return &payload.Data[0], nil
}
