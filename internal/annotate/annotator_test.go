package annotate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cadence/internal/catalog"
)

type fakeCompleter struct {
	response  string
	err       error
	healthErr error
	calls     int
	gotSystem string
	gotUser   string
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func annotatedTrack() *catalog.Track {
	tempo := 62.0
	mode := "Minor"
	valence := 0.35
	return &catalog.Track{
		ID:           1,
		Title:        "Weightless",
		Artist:       "Marconi Union",
		TempoBPM:     &tempo,
		Mode:         &mode,
		LyricValence: &valence,
	}
}

func TestAnnotatorFillsGuidance(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"listening_context": "  Evening wind-down before sleep. ", "contraindications": "Skip during acute agitation."}`,
	}
	annotator := New(completer, nil)
	track := annotatedTrack()

	if err := annotator.Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if track.ListeningContext != "Evening wind-down before sleep." {
		t.Errorf("listening context = %q", track.ListeningContext)
	}
	if track.Contraindications != "Skip during acute agitation." {
		t.Errorf("contraindications = %q", track.Contraindications)
	}
	if completer.calls != 1 {
		t.Errorf("completer calls = %d, want 1", completer.calls)
	}
	if !strings.Contains(completer.gotSystem, "JSON") {
		t.Errorf("system prompt missing JSON instruction: %q", completer.gotSystem)
	}
	for _, want := range []string{"Weightless", "Marconi Union", "Tempo BPM: 62", "Mode: Minor", "Lyric valence: 0.35", "Lyric arousal: unknown"} {
		if !strings.Contains(completer.gotUser, want) {
			t.Errorf("user prompt missing %q:\n%s", want, completer.gotUser)
		}
	}
}

func TestAnnotatorLabelsMissingFeaturesUnknown(t *testing.T) {
	completer := &fakeCompleter{response: `{"listening_context": "x", "contraindications": ""}`}
	track := &catalog.Track{ID: 2, Title: "Opus 23", Artist: "Dustin O'Halloran"}

	if err := New(completer, nil).Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"Tempo BPM: unknown", "Mode: unknown", "Lyric valence: unknown", "Lyric arousal: unknown"} {
		if !strings.Contains(completer.gotUser, want) {
			t.Errorf("user prompt missing %q:\n%s", want, completer.gotUser)
		}
	}
}

func TestAnnotatorDecodesFencedResponse(t *testing.T) {
	completer := &fakeCompleter{
		response: "```json\n{\"listening_context\": \"Morning focus sessions.\", \"contraindications\": \"\"}\n```",
	}
	track := annotatedTrack()

	if err := New(completer, nil).Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if track.ListeningContext != "Morning focus sessions." {
		t.Errorf("listening context = %q", track.ListeningContext)
	}
}

func TestAnnotatorRequestFailureIsNotFatal(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream 500")}
	track := annotatedTrack()

	if err := New(completer, nil).Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute returned error for model failure: %v", err)
	}
	if track.ListeningContext != "" || track.Contraindications != "" {
		t.Errorf("annotation fields set after failure: %q / %q", track.ListeningContext, track.Contraindications)
	}
}

func TestAnnotatorMalformedResponseIsNotFatal(t *testing.T) {
	completer := &fakeCompleter{response: "I would rather chat about the weather."}
	track := annotatedTrack()

	if err := New(completer, nil).Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute returned error for malformed response: %v", err)
	}
	if track.ListeningContext != "" {
		t.Errorf("listening context = %q, want empty", track.ListeningContext)
	}
}

func TestAnnotatorPropagatesCancellation(t *testing.T) {
	completer := &fakeCompleter{err: context.Canceled}
	err := New(completer, nil).Execute(context.Background(), annotatedTrack())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute error = %v, want context.Canceled", err)
	}
}

func TestAnnotatorNilClientIsNoOp(t *testing.T) {
	track := annotatedTrack()
	if err := New(nil, nil).Execute(context.Background(), track); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if track.ListeningContext != "" || track.Contraindications != "" {
		t.Errorf("nil client mutated track: %q / %q", track.ListeningContext, track.Contraindications)
	}
}

func TestAnnotatorPrepareRequiresIdentity(t *testing.T) {
	annotator := New(&fakeCompleter{}, nil)
	if err := annotator.Prepare(context.Background(), &catalog.Track{ID: 3, Title: "Untitled"}); err == nil {
		t.Fatal("Prepare accepted track without artist")
	}
	if err := annotator.Prepare(context.Background(), annotatedTrack()); err != nil {
		t.Fatalf("Prepare rejected valid track: %v", err)
	}
}

func TestAnnotatorHealthCheck(t *testing.T) {
	if health := New(nil, nil).HealthCheck(context.Background()); !health.Ready {
		t.Errorf("disabled annotator not ready: %+v", health)
	}
	if health := New(&fakeCompleter{healthErr: errors.New("401")}, nil).HealthCheck(context.Background()); health.Ready {
		t.Errorf("unreachable endpoint reported ready: %+v", health)
	}
	if health := New(&fakeCompleter{}, nil).HealthCheck(context.Background()); !health.Ready || health.Name != "annotate" {
		t.Errorf("healthy annotator = %+v", health)
	}
}
