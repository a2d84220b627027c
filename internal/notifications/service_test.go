package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cadence/internal/config"
	"cadence/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"processed": 4}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "import completed",
			event: notifications.EventImportCompleted,
			payload: notifications.Payload{
				"path":     "/data/playlists/healing.csv",
				"imported": 42,
				"skipped":  3,
			},
			expectTitle:   "Cadence - Import Complete",
			expectMessage: "🎵 Imported 42 tracks from healing.csv (3 duplicates skipped)",
			expectTags:    "cadence,import,completed",
		},
		{
			name:  "run started",
			event: notifications.EventRunStarted,
			payload: notifications.Payload{
				"count": 17,
			},
			expectTitle:   "Cadence - Run Started",
			expectMessage: "Started processing 17 tracks",
			expectTags:    "cadence,run,started",
		},
		{
			name:  "enrichment completed",
			event: notifications.EventEnrichmentCompleted,
			payload: notifications.Payload{
				"resolved": 31,
				"missing":  5,
			},
			expectTitle:   "Cadence - Enrichment Complete",
			expectMessage: "🎹 Enrichment complete: 31 features resolved, 5 still missing",
			expectTags:    "cadence,enrich,completed",
		},
		{
			name:  "scoring completed",
			event: notifications.EventScoringCompleted,
			payload: notifications.Payload{
				"scored":   12,
				"ungraded": 2,
			},
			expectTitle:   "Cadence - Scoring Complete",
			expectMessage: "🎼 Scoring complete: 12 tracks graded, 2 without enough features",
			expectTags:    "cadence,score,completed",
		},
		{
			name:  "run completed clean",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"processed": 17,
				"failed":    0,
				"duration":  90 * time.Second,
			},
			expectTitle:   "Cadence - Run Complete",
			expectMessage: "✅ Run complete: 17 tracks processed in 1m30s",
			expectTags:    "cadence,run,completed",
		},
		{
			name:  "run completed with failures",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"processed": 15,
				"failed":    2,
				"duration":  45 * time.Second,
			},
			expectTitle:   "Cadence - Run Complete (with errors)",
			expectMessage: "Run complete: 15 succeeded, 2 failed in 45s",
			expectTags:    "cadence,run,completed",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"context": "enrich (track #7)",
				"error":   errors.New("deezer returned 503"),
			},
			expectTitle:    "Cadence - Error",
			expectMessage:  "❌ Error with enrich (track #7): deezer returned 503",
			expectTags:     "cadence,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceRespectsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for muted event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Imports = false
	cfg.Notifications.Enrichment = false
	cfg.Notifications.Scoring = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	muted := []notifications.Event{
		notifications.EventImportCompleted,
		notifications.EventRunStarted,
		notifications.EventEnrichmentCompleted,
		notifications.EventScoringCompleted,
		notifications.EventRunCompleted,
		notifications.EventError,
	}

	for _, event := range muted {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for muted event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden topic", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventError, notifications.Payload{"error": "boom"})
	if err == nil {
		t.Fatal("expected error for HTTP 403 response")
	}
}
