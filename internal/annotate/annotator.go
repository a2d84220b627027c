package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"cadence/internal/catalog"
	"cadence/internal/logging"
	"cadence/internal/services/llm"
	"cadence/internal/stage"
)

const systemPrompt = `You are a music therapy assistant helping a curator prepare a playlist for listeners managing depression. For each song you receive a title, artist, and whatever musical features were resolved for it. Respond with a single JSON object and nothing else:

{"listening_context": "<when and how this song is best used in a therapeutic listening session>", "contraindications": "<listener states or symptoms for which this song should be skipped, or an empty string if none>"}

Keep each field to one or two sentences. Base your guidance on the features provided; do not invent tempo, mode, or sentiment values that were not given.`

// Annotation holds the model's advisory guidance for one track.
type Annotation struct {
	ListeningContext  string `json:"listening_context"`
	Contraindications string `json:"contraindications"`
}

// Completer is the completion surface the annotator needs. *llm.Client
// satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Annotator drives the annotation stage for the pipeline.
type Annotator struct {
	client Completer
	logger *slog.Logger
}

// New builds an annotator backed by the given completion client. A nil client
// turns the stage into a no-op so the pipeline can keep a fixed stage list
// whether or not annotation is configured.
func New(client Completer, logger *slog.Logger) *Annotator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Annotator{
		client: client,
		logger: logger.With(logging.String(logging.FieldComponent, "annotate")),
	}
}

// Prepare validates that the track carries enough identity to prompt with.
func (a *Annotator) Prepare(ctx context.Context, track *catalog.Track) error {
	return stage.RequireIdentity(track)
}

// Execute requests guidance for the track and fills ListeningContext and
// Contraindications. Model failures are logged and leave the fields empty;
// only context cancellation is returned as an error.
func (a *Annotator) Execute(ctx context.Context, track *catalog.Track) error {
	if a.client == nil {
		return nil
	}
	raw, err := a.client.CompleteJSON(ctx, systemPrompt, userPrompt(track))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		a.logger.Warn("annotation request failed, leaving track unannotated",
			logging.Int64(logging.FieldTrackID, track.ID),
			logging.Error(err))
		return nil
	}
	var annotation Annotation
	if err := llm.DecodeLLMJSON(raw, &annotation); err != nil {
		a.logger.Warn("annotation response unparsable, leaving track unannotated",
			logging.Int64(logging.FieldTrackID, track.ID),
			logging.Error(err))
		return nil
	}
	track.ListeningContext = strings.TrimSpace(annotation.ListeningContext)
	track.Contraindications = strings.TrimSpace(annotation.Contraindications)
	return nil
}

// HealthCheck pings the completion endpoint. With no client configured the
// stage reports ready so a catalog without annotation still passes health.
func (a *Annotator) HealthCheck(ctx context.Context) stage.Health {
	const name = "annotate"
	if a.client == nil {
		return stage.Health{Name: name, Ready: true, Detail: "annotation disabled"}
	}
	if err := a.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("completion endpoint unreachable: %v", err))
	}
	return stage.Healthy(name)
}

// userPrompt renders the per-track request. Missing features are labelled
// unknown rather than omitted so the model cannot mistake absence for zero.
func userPrompt(track *catalog.Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Song: %s by %s\n", track.Title, track.Artist)
	fmt.Fprintf(&b, "Tempo BPM: %s\n", formatNumber(track.TempoBPM))
	fmt.Fprintf(&b, "Mode: %s\n", formatText(track.Mode))
	fmt.Fprintf(&b, "Lyric valence: %s\n", formatNumber(track.LyricValence))
	fmt.Fprintf(&b, "Lyric arousal: %s\n", formatNumber(track.LyricArousal))
	b.WriteString("Suggest a listening context and contraindications for this song.")
	return b.String()
}

func formatNumber(value *float64) string {
	if value == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func formatText(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "unknown"
	}
	return strings.TrimSpace(*value)
}
