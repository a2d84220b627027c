package musicbrainz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cadence/internal/services"
	"cadence/internal/sources/musicbrainz"
)

func TestNewRequiresUserAgent(t *testing.T) {
	if _, err := musicbrainz.New("https://example.com", "  "); err == nil {
		t.Fatal("expected error when user agent missing")
	}
}

func TestSearchRecordingSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "cadence/0.1 (test)" {
			t.Fatalf("unexpected user agent %q", got)
		}
		query := r.URL.Query()
		if got := query.Get("query"); got != `"Clair de Lune" AND artist:"Claude Debussy"` {
			t.Fatalf("unexpected query %q", got)
		}
		if query.Get("fmt") != "json" || query.Get("limit") != "1" {
			t.Fatalf("unexpected params %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recordings":[{"id":"5a8e07a5-9cbf-4d3d-8e5e-49f0b3e96a6d","title":"Clair de Lune","score":100}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := musicbrainz.New(server.URL, "cadence/0.1 (test)")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	recording, err := client.SearchRecording(context.Background(), "Clair de Lune", "Claude Debussy")
	if err != nil {
		t.Fatalf("SearchRecording returned error: %v", err)
	}
	if recording.ID != "5a8e07a5-9cbf-4d3d-8e5e-49f0b3e96a6d" || recording.Score != 100 {
		t.Fatalf("unexpected recording: %#v", recording)
	}
}

func TestSearchRecordingNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recordings":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := musicbrainz.New(server.URL, "cadence/0.1 (test)")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.SearchRecording(context.Background(), "Nothing", "Nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestSearchRecordingBlankIDReadsAsMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recordings":[{"id":"","title":"Ghost"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := musicbrainz.New(server.URL, "cadence/0.1 (test)")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.SearchRecording(context.Background(), "Ghost", "Nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestSearchRecordingServerFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := musicbrainz.New(server.URL, "cadence/0.1 (test)")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.SearchRecording(context.Background(), "Clair de Lune", "Claude Debussy"); !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestSearchRecordingValidatesInput(t *testing.T) {
	client, err := musicbrainz.New("https://example.com", "cadence/0.1 (test)")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchRecording(context.Background(), "", "Artist"); err == nil {
		t.Fatal("expected error for blank title")
	}
}
