package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cadence/internal/config"
)

const userAgent = "Cadence/0.1.0"

// Event identifies a pipeline milestone worth pushing to the curator.
type Event string

const (
	EventImportCompleted     Event = "import_completed"
	EventRunStarted          Event = "run_started"
	EventEnrichmentCompleted Event = "enrichment_completed"
	EventScoringCompleted    Event = "scoring_completed"
	EventRunCompleted        Event = "run_completed"
	EventError               Event = "error"
)

// Payload carries event-specific values keyed by well-known names. Formatters
// tolerate missing keys so callers only supply what they have.
type Payload map[string]any

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		prefs:    cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	prefs    config.Notifications
}

// Publish formats and sends the event. Events whose category is muted in the
// config return nil without touching the network.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled(event) {
		return nil
	}
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventImportCompleted:
		return n.prefs.Imports
	case EventEnrichmentCompleted:
		return n.prefs.Enrichment
	case EventScoringCompleted:
		return n.prefs.Scoring
	case EventRunStarted, EventRunCompleted:
		return n.prefs.Enrichment || n.prefs.Scoring
	case EventError:
		return n.prefs.Errors
	default:
		return false
	}
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventImportCompleted:
		imported := payloadInt(payload, "imported")
		skipped := payloadInt(payload, "skipped")
		source := filepath.Base(payloadString(payload, "path"))
		body := fmt.Sprintf("🎵 Imported %d tracks from %s", imported, source)
		if skipped > 0 {
			body = fmt.Sprintf("%s (%d duplicates skipped)", body, skipped)
		}
		return message{
			title: "Cadence - Import Complete",
			body:  body,
			tags:  []string{"cadence", "import", "completed"},
		}, true

	case EventRunStarted:
		count := payloadInt(payload, "count")
		return message{
			title: "Cadence - Run Started",
			body:  fmt.Sprintf("Started processing %d tracks", count),
			tags:  []string{"cadence", "run", "started"},
		}, true

	case EventEnrichmentCompleted:
		resolved := payloadInt(payload, "resolved")
		missing := payloadInt(payload, "missing")
		return message{
			title: "Cadence - Enrichment Complete",
			body:  fmt.Sprintf("🎹 Enrichment complete: %d features resolved, %d still missing", resolved, missing),
			tags:  []string{"cadence", "enrich", "completed"},
		}, true

	case EventScoringCompleted:
		scored := payloadInt(payload, "scored")
		ungraded := payloadInt(payload, "ungraded")
		body := fmt.Sprintf("🎼 Scoring complete: %d tracks graded", scored)
		if ungraded > 0 {
			body = fmt.Sprintf("%s, %d without enough features", body, ungraded)
		}
		return message{
			title: "Cadence - Scoring Complete",
			body:  body,
			tags:  []string{"cadence", "score", "completed"},
		}, true

	case EventRunCompleted:
		processed := payloadInt(payload, "processed")
		failed := payloadInt(payload, "failed")
		durationText := durationLabel(payloadDuration(payload, "duration"))
		if failed == 0 {
			return message{
				title: "Cadence - Run Complete",
				body:  fmt.Sprintf("✅ Run complete: %d tracks processed in %s", processed, durationText),
				tags:  []string{"cadence", "run", "completed"},
			}, true
		}
		return message{
			title: "Cadence - Run Complete (with errors)",
			body:  fmt.Sprintf("Run complete: %d succeeded, %d failed in %s", processed, failed, durationText),
			tags:  []string{"cadence", "run", "completed"},
		}, true

	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if contextLabel := strings.TrimSpace(payloadString(payload, "context")); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := strings.TrimSpace(payloadString(payload, "error")); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Cadence - Error",
			body:     builder.String(),
			tags:     []string{"cadence", "error", "alert"},
			priority: "high",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func payloadDuration(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key].(time.Duration); ok {
		return v
	}
	return 0
}

func durationLabel(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
