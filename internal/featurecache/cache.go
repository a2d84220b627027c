package featurecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cadence/internal/logging"
)

// Entry represents a cached mapping from normalized track key to resolved
// feature values. Nil numeric pointers and empty strings mean the value was
// never resolved, so a hit can still leave fields for the provider chain.
// Only scalar features are cached; lyrics text lives in the catalog store.
type Entry struct {
	Key           string    `json:"key"`
	TempoBPM      *float64  `json:"tempo_bpm,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	LyricValence  *float64  `json:"lyric_valence,omitempty"`
	LyricArousal  *float64  `json:"lyric_arousal,omitempty"`
	TempoSource   string    `json:"tempo_source,omitempty"`
	ModeSource    string    `json:"mode_source,omitempty"`
	ValenceSource string    `json:"valence_source,omitempty"`
	ArousalSource string    `json:"arousal_source,omitempty"`
	CachedAt      time.Time `json:"cached_at"`
}

// HasData reports whether the entry carries at least one resolved value.
func (e Entry) HasData() bool {
	return e.TempoBPM != nil || e.Mode != "" || e.LyricValence != nil || e.LyricArousal != nil
}

func (e *Entry) sanitize() {
	e.TempoBPM = finiteOrNil(e.TempoBPM)
	e.LyricValence = finiteOrNil(e.LyricValence)
	e.LyricArousal = finiteOrNil(e.LyricArousal)
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// mergeEntry folds incoming non-null fields over the existing entry. Sources
// travel with their values.
func mergeEntry(existing, incoming Entry) Entry {
	merged := existing
	merged.Key = incoming.Key
	merged.CachedAt = incoming.CachedAt
	if incoming.TempoBPM != nil {
		merged.TempoBPM = incoming.TempoBPM
		merged.TempoSource = incoming.TempoSource
	}
	if incoming.Mode != "" {
		merged.Mode = incoming.Mode
		merged.ModeSource = incoming.ModeSource
	}
	if incoming.LyricValence != nil {
		merged.LyricValence = incoming.LyricValence
		merged.ValenceSource = incoming.ValenceSource
	}
	if incoming.LyricArousal != nil {
		merged.LyricArousal = incoming.LyricArousal
		merged.ArousalSource = incoming.ArousalSource
	}
	return merged
}

// Cache provides thread-safe access to the feature cache.
type Cache struct {
	path       string
	flushEvery int
	logger     *slog.Logger
	mu         sync.RWMutex
	entries    map[string]Entry // keyed by normalized track key
	dirty      int
}

// NewCache creates a new cache instance. If path is empty, the cache is
// non-functional (all operations become no-ops). The cache file is created
// lazily on the first persisted write. flushEvery controls how many Put calls
// accumulate before the file is rewritten; values below one persist every Put.
func NewCache(path string, flushEvery int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "featurecache")
	if flushEvery < 1 {
		flushEvery = 1
	}

	c := &Cache{
		path:       path,
		flushEvery: flushEvery,
		logger:     logger,
		entries:    make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	// Load existing cache if present
	if err := c.load(); err != nil {
		logger.Warn("failed to load feature cache",
			logging.String(logging.FieldEventType, "featurecache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "previously enriched tracks will hit providers again"))
	}

	return c
}

// Lookup returns the cache entry for the given normalized key if found.
func (c *Cache) Lookup(key string) (Entry, bool) {
	key = strings.TrimSpace(key)
	if key == "" || c.path == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	return entry, found
}

// Put merges an entry's non-null fields into the cache; an incoming null
// never erases a stored value. The file is rewritten once the configured
// number of puts have accumulated; call Flush to force the write.
func (c *Cache) Put(entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil // no-op when path not configured
	}
	entry.sanitize()
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Key] = mergeEntry(c.entries[entry.Key], entry)
	c.dirty++
	if c.dirty < c.flushEvery {
		return nil
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.dirty = 0

	c.logger.Debug("flushed feature cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// Flush persists any buffered puts. It is a no-op when nothing changed.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty == 0 {
		return nil
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.dirty = 0

	c.logger.Debug("flushed feature cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// Remove deletes an entry by key and persists the change immediately.
func (c *Cache) Remove(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return fmt.Errorf("key %q not found in cache", key)
	}

	delete(c.entries, key)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.dirty = 0

	c.logger.Debug("removed entry from feature cache", logging.String("key", key))
	return nil
}

// List returns all cache entries sorted by CachedAt descending (newest first).
func (c *Cache) List() []Entry {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sortEntries(entries)

	return entries
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.dirty = 0

	c.logger.Debug("cleared feature cache")
	return nil
}

// Count returns the number of entries in the cache.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Path returns the backing file location, or empty when disabled.
func (c *Cache) Path() string {
	return c.path
}

// load reads the cache from disk into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		entry.Key = strings.TrimSpace(entry.Key)
		if entry.Key == "" {
			continue
		}
		entry.sanitize()
		c.entries[entry.Key] = entry
	}

	c.logger.Debug("loaded feature cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))

	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sortEntries(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	// Write atomically via temp file
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].CachedAt.After(entries[j].CachedAt)
		}
		return entries[i].Key < entries[j].Key
	})
}
