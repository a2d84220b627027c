package genius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cadence/internal/sources"
	"cadence/internal/textutil"
)

// minSimilarity is the token-overlap score a hit must clear to count as the
// requested song rather than a cover list or unrelated page.
const minSimilarity = 0.5

// Song pages stay well under this size; the cap bounds reads from
// misbehaving servers.
const maxPageBytes = 8 << 20

// Artist identifies the primary performer credited on a song.
type Artist struct {
	Name string `json:"name"`
}

// Song represents a Genius search result.
type Song struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	FullTitle     string `json:"full_title"`
	URL           string `json:"url"`
	PrimaryArtist Artist `json:"primary_artist"`
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result Song   `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

var (
	containerPattern = regexp.MustCompile(`(?s)<div[^>]*data-lyrics-container="true"[^>]*>(.*?)</div>`)
	lineBreakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
)

// Fetcher defines the Genius operations used by the lyrics provider.
type Fetcher interface {
	SearchSong(ctx context.Context, title, artist string) (*Song, error)
	FetchLyrics(ctx context.Context, songURL string) (string, error)
}

// Client provides access to the Genius API and song pages.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

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

// WithUserAgent sets the User-Agent sent on song page fetches. Genius serves
// pages to any agent but some CDN rules reject blank ones.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(userAgent)
	}
}

// New creates a Genius client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("genius api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("genius base url required")
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

// SearchSong returns the first song hit that plausibly matches the title and
// artist pair.
func (c *Client) SearchSong(ctx context.Context, title, artist string) (*Song, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return nil, errors.New("title and artist must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse genius url: %w", err)
	}
	params := url.Values{}
	params.Set("q", title+" "+artist)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sources.NewStatusError("genius", resp, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode genius response: %w", err)
	}

	want := textutil.NewFingerprint(title + " " + artist)
	for i := range payload.Response.Hits {
		hit := payload.Response.Hits[i]
		if hit.Type != "song" {
			continue
		}
		candidate := textutil.NewFingerprint(hit.Result.Title + " " + hit.Result.PrimaryArtist.Name)
		if textutil.CosineSimilarity(want, candidate) >= minSimilarity {
			result := hit.Result
			return &result, nil
		}
	}
	return nil, sources.NoMatch("genius", title+" / "+artist)
}

// FetchLyrics downloads a song page and extracts the lyrics text from its
// lyrics containers.
func (c *Client) FetchLyrics(ctx context.Context, songURL string) (string, error) {
	songURL = strings.TrimSpace(songURL)
	if songURL == "" {
		return "", errors.New("song url must not be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, songURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", sources.NewStatusError("genius", resp, latency)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read song page (latency=%v): %w", latency, err)
	}

	lyrics := extractLyrics(string(page))
	if lyrics == "" {
		return "", sources.NoMatch("genius", "lyrics container at "+songURL)
	}
	return lyrics, nil
}

// extractLyrics pulls text out of every data-lyrics-container block,
// converting line breaks and dropping all other markup.
func extractLyrics(page string) string {
	matches := containerPattern.FindAllStringSubmatch(page, -1)
	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		block := lineBreakPattern.ReplaceAllString(match[1], "\n")
		block = tagPattern.ReplaceAllString(block, "")
		block = html.UnescapeString(block)
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n")
}
