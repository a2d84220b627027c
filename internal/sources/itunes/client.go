package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cadence/internal/sources"
)

// Previews are short clips, so anything larger than this indicates a wrong
// URL rather than a legitimate download.
const maxPreviewBytes = 16 << 20

// Song represents a single iTunes search hit.
type Song struct {
	TrackID    int64  `json:"trackId"`
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	PreviewURL string `json:"previewUrl"`
}

// HasPreview reports whether the hit carries a downloadable preview clip.
func (s *Song) HasPreview() bool {
	return s != nil && strings.TrimSpace(s.PreviewURL) != ""
}

type searchResponse struct {
	ResultCount int    `json:"resultCount"`
	Results     []Song `json:"results"`
}

// Searcher defines the iTunes operations used by enrichment.
type Searcher interface {
	SearchSong(ctx context.Context, title, artist string) (*Song, error)
	DownloadPreview(ctx context.Context, previewURL string) ([]byte, error)
}

// Client provides access to the iTunes Search API.
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

// New creates an iTunes client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("itunes base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchSong returns the best iTunes match for a title and artist pair.
func (c *Client) SearchSong(ctx context.Context, title, artist string) (*Song, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return nil, errors.New("title and artist must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse itunes url: %w", err)
	}
	params := url.Values{}
	params.Set("term", title+" "+artist)
	params.Set("media", "music")
	params.Set("entity", "song")
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
		return nil, sources.NewStatusError("itunes", resp, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, sources.NoMatch("itunes", title+" / "+artist)
	}
	return &payload.Results[0], nil
}

// DownloadPreview fetches the preview clip bytes for a search hit.
func (c *Client) DownloadPreview(ctx context.Context, previewURL string) ([]byte, error) {
	previewURL = strings.TrimSpace(previewURL)
	if previewURL == "" {
		return nil, errors.New("preview url must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
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
		return nil, sources.NewStatusError("itunes", resp, latency)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read preview (latency=%v): %w", latency, err)
	}
	if len(data) > maxPreviewBytes {
		return nil, fmt.Errorf("preview exceeds %d bytes", maxPreviewBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("preview response was empty")
	}
	return data, nil
}
