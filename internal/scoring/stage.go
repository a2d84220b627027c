package scoring

import (
	"context"
	"log/slog"
	"sync"

	"cadence/internal/catalog"
	"cadence/internal/logging"
	"cadence/internal/stage"
)

// Stage adapts the Scorer to the pipeline's stage contract and tallies graded
// versus feature-starved tracks for the completion notification.
type Stage struct {
	scorer *Scorer
	logger *slog.Logger

	mu       sync.Mutex
	graded   int
	ungraded int
}

// NewStage wraps the scorer for pipeline use.
func NewStage(scorer *Scorer, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		scorer: scorer,
		logger: logger.With(logging.String(logging.FieldComponent, "score-stage")),
	}
}

// Prepare validates the track identity.
func (s *Stage) Prepare(ctx context.Context, track *catalog.Track) error {
	return stage.RequireIdentity(track)
}

// Execute computes and writes the track's scores, weights, composite, and
// letter grade. Scoring is pure and total; it never fails a track.
func (s *Stage) Execute(ctx context.Context, track *catalog.Track) error {
	s.scorer.Score(track)

	s.mu.Lock()
	if track.CompositeScore != nil {
		s.graded++
	} else {
		s.ungraded++
	}
	s.mu.Unlock()

	attrs := []logging.Attr{logging.String("grade", track.LetterGrade)}
	if track.CompositeScore != nil {
		attrs = append(attrs, logging.Float64("composite", *track.CompositeScore))
	}
	logging.WithContext(ctx, s.logger).Info("track scored", logging.Args(attrs...)...)
	return nil
}

// HealthCheck always reports ready; scoring has no external dependencies.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "score"
	if s.scorer == nil {
		return stage.Unhealthy(name, "no scorer configured")
	}
	return stage.Healthy(name)
}

// Tally returns the grading counts accumulated since the stage was built.
func (s *Stage) Tally() (graded, ungraded int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graded, s.ungraded
}
