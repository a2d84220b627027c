package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cadence/internal/catalog"
	"cadence/internal/logging"
	"cadence/internal/stage"
)

// Stage adapts the Executor to the pipeline's stage contract and tallies
// per-run resolution counts for the completion notification.
type Stage struct {
	executor *Executor
	logger   *slog.Logger

	mu       sync.Mutex
	resolved int
	missing  int
}

// NewStage wraps the executor for pipeline use.
func NewStage(executor *Executor, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		executor: executor,
		logger:   logger.With(logging.String(logging.FieldComponent, "enrich-stage")),
	}
}

// Prepare validates the track identity required to query providers.
func (s *Stage) Prepare(ctx context.Context, track *catalog.Track) error {
	return stage.RequireIdentity(track)
}

// Execute resolves the track's missing features and copies the enriched
// snapshot onto the live record.
func (s *Stage) Execute(ctx context.Context, track *catalog.Track) error {
	outcome, err := s.executor.Resolve(ctx, track)
	if err != nil {
		return err
	}
	*track = *outcome.Track

	s.mu.Lock()
	s.resolved += len(outcome.Resolved) + len(outcome.FromCache)
	s.missing += len(outcome.Missing)
	s.mu.Unlock()

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("track enriched",
		logging.Int("probes", outcome.Probes),
		logging.Int("resolved", len(outcome.Resolved)),
		logging.Int("from_cache", len(outcome.FromCache)),
		logging.Int("missing", len(outcome.Missing)))
	for _, feature := range outcome.Missing {
		logger.Debug("feature unresolved after chain walk",
			logging.String(logging.FieldFeature, string(feature)))
	}
	return nil
}

// HealthCheck verifies that the resolution cache file is writable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	const name = "enrich"
	if s.executor == nil {
		return stage.Unhealthy(name, "no executor configured")
	}
	if err := s.executor.FlushCache(); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("cache not writable: %v", err))
	}
	return stage.Healthy(name)
}

// Flush persists buffered cache entries. The pipeline calls this after a
// pass and on interruption so a cancelled run never loses resolved values.
func (s *Stage) Flush() error {
	return s.executor.FlushCache()
}

// Tally returns the feature counts accumulated since the stage was built.
func (s *Stage) Tally() (resolved, missing int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved, s.missing
}
