package testsupport

import (
	"context"
	"testing"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/trackkey"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTrack inserts a pending track for tests using the provided store.
func NewTrack(t testing.TB, store *catalog.Store, title, artist string) *catalog.Track {
	t.Helper()

	track, err := store.InsertTrack(context.Background(), &catalog.Track{
		Title:         title,
		Artist:        artist,
		NormalizedKey: trackkey.Normalize(title, artist),
	})
	if err != nil {
		t.Fatalf("store.InsertTrack: %v", err)
	}
	return track
}
