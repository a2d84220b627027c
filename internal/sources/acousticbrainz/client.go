package acousticbrainz

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

// stringField decodes tonal attributes that appear either as bare strings or
// wrapped in a {"value": ...} object depending on extractor generation.
type stringField struct {
	Value string
}

func (f *stringField) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		f.Value = strings.TrimSpace(plain)
		return nil
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		f.Value = strings.TrimSpace(wrapped.Value)
		return nil
	}
	f.Value = ""
	return nil
}

// floatField decodes numeric attributes with the same bare-or-wrapped
// tolerance as stringField.
type floatField struct {
	Value float64
	Valid bool
}

func (f *floatField) UnmarshalJSON(data []byte) error {
	var plain float64
	if err := json.Unmarshal(data, &plain); err == nil {
		f.Value = plain
		f.Valid = true
		return nil
	}
	var wrapped struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Value != nil {
		f.Value = *wrapped.Value
		f.Valid = true
		return nil
	}
	f.Value = 0
	f.Valid = false
	return nil
}

// HighLevel is the subset of an AcousticBrainz high-level document used for
// enrichment.
type HighLevel struct {
	Rhythm struct {
		BPM floatField `json:"bpm"`
	} `json:"rhythm"`
	Tonal struct {
		KeyKey      stringField `json:"key_key"`
		KeyScale    stringField `json:"key_scale"`
		ChordsScale stringField `json:"chords_scale"`
	} `json:"tonal"`
}

// BPM returns the measured tempo when present and positive.
func (h *HighLevel) BPM() (float64, bool) {
	if h == nil || !h.Rhythm.BPM.Valid || h.Rhythm.BPM.Value <= 0 {
		return 0, false
	}
	return h.Rhythm.BPM.Value, true
}

// Scale returns the estimated key scale, falling back to the chords scale.
func (h *HighLevel) Scale() (string, bool) {
	if h == nil {
		return "", false
	}
	if h.Tonal.KeyScale.Value != "" {
		return h.Tonal.KeyScale.Value, true
	}
	if h.Tonal.ChordsScale.Value != "" {
		return h.Tonal.ChordsScale.Value, true
	}
	return "", false
}

// KeyString reconstructs a human-readable key such as "A minor" when both
// the key name and scale are known.
func (h *HighLevel) KeyString() (string, bool) {
	if h == nil || h.Tonal.KeyKey.Value == "" || h.Tonal.KeyScale.Value == "" {
		return "", false
	}
	return h.Tonal.KeyKey.Value + " " + h.Tonal.KeyScale.Value, true
}

// Fetcher defines the AcousticBrainz operations used by enrichment.
type Fetcher interface {
	GetHighLevel(ctx context.Context, mbid string) (*HighLevel, error)
}

// Client provides access to the AcousticBrainz high-level API.
type Client struct {
	baseURL    string
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

// New creates an AcousticBrainz client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("acousticbrainz base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetHighLevel fetches the high-level document for a recording MBID.
func (c *Client) GetHighLevel(ctx context.Context, mbid string) (*HighLevel, error) {
	mbid = strings.TrimSpace(mbid)
	if mbid == "" {
		return nil, errors.New("mbid must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/" + url.PathEscape(mbid) + "/high-level")
	if err != nil {
		return nil, fmt.Errorf("parse acousticbrainz url: %w", err)
	}

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
		return nil, sources.NewStatusError("acousticbrainz", resp, latency)
	}

	var payload HighLevel
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode acousticbrainz response: %w", err)
	}
	return &payload, nil
}
