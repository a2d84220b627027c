package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/notifications"
	"cadence/internal/services"
)

// StageResult reports one stage's pass over the catalog.
type StageResult struct {
	Stage     string
	Processed int
	Failed    int
	Duration  time.Duration
}

// Summary aggregates a whole run.
type Summary struct {
	RunID     string
	Stages    []StageResult
	Processed int
	Failed    int
	Duration  time.Duration
}

// Runner claims tracks by status and drives them through stages.
type Runner struct {
	store    *catalog.Store
	notifier notifications.Service
	logger   *slog.Logger
	lockPath string
}

// NewRunner builds a runner over the given store. The lock file lives next
// to the logs so `cadence catalog health` can point at it when a run is stuck.
func NewRunner(cfg *config.Config, store *catalog.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		store:    store,
		notifier: notifier,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
		lockPath: filepath.Join(cfg.Paths.LogDir, "cadence.lock"),
	}
}

// LockPath returns the run lock file location.
func (r *Runner) LockPath() string {
	return r.lockPath
}

// RunStages executes the given stages in order, each as a full pass over its
// claimable tracks. Per-track failures are persisted and the run continues;
// the returned error is non-nil only for cancellation, a failed lock, or a
// store failure. The partial summary is returned either way.
func (r *Runner) RunStages(ctx context.Context, stages ...Stage) (*Summary, error) {
	if len(stages) == 0 {
		return nil, errors.New("no stages to run")
	}

	lock := flock.New(r.lockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("another cadence run holds %s", r.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	logger := r.logger.With(logging.String("run_id", runID))
	summary := &Summary{RunID: runID}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	if reset, err := r.store.ResetStuckProcessing(ctx); err != nil {
		logger.Warn("could not reset interrupted tracks", logging.Error(err))
	} else if reset > 0 {
		logger.Info("reset interrupted tracks to stage start", logging.Int64("count", reset))
	}

	multiStage := len(stages) > 1
	if multiStage {
		r.publish(ctx, logger, notifications.EventRunStarted, notifications.Payload{
			"count": r.claimableCount(ctx, stages),
		})
	}

	for _, st := range stages {
		result, err := r.runStage(ctx, st, logger)
		summary.Stages = append(summary.Stages, result)
		summary.Processed += result.Processed
		summary.Failed += result.Failed
		if err != nil {
			return summary, err
		}
		r.publishStageEvent(ctx, logger, st)
	}

	if multiStage {
		r.publish(ctx, logger, notifications.EventRunCompleted, notifications.Payload{
			"processed": summary.Processed,
			"failed":    summary.Failed,
			"duration":  time.Since(start),
		})
	}

	logger.Info("run completed",
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", time.Since(start)))
	return summary, nil
}

// runStage drains the stage's claimable statuses. The flush runs on every
// exit path so an interrupted pass still persists cache state.
func (r *Runner) runStage(ctx context.Context, st Stage, logger *slog.Logger) (StageResult, error) {
	result := StageResult{Stage: st.Name}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()
	defer r.flushStage(st, logger)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		track, err := r.store.NextForStatuses(ctx, st.Claim...)
		if err != nil {
			return result, fmt.Errorf("fetch next track: %w", err)
		}
		if track == nil {
			return result, nil
		}
		if err := r.processTrack(ctx, st, track, logger); err != nil {
			return result, err
		}
		switch track.Status {
		case catalog.StatusFailed, catalog.StatusReview:
			result.Failed++
		default:
			result.Processed++
		}
	}
}

// processTrack moves one track through the stage's transitions. The returned
// error is non-nil only for cancellation or a store failure; stage errors are
// persisted onto the track instead.
func (r *Runner) processTrack(ctx context.Context, st Stage, track *catalog.Track, base *slog.Logger) error {
	trackCtx := services.WithTrackID(ctx, track.ID)
	trackCtx = services.WithStage(trackCtx, st.Name)
	trackCtx = services.WithRequestID(trackCtx, uuid.NewString())
	logger := logging.WithContext(trackCtx, base)

	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("title", track.Title),
		logging.String("artist", track.Artist))

	track.Status = st.Processing
	track.ErrorMessage = ""
	if err := r.store.Update(trackCtx, track); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}

	if err := st.Handler.Prepare(trackCtx, track); err != nil {
		r.failTrack(trackCtx, logger, st, track, err)
		return nil
	}
	if err := r.store.Update(trackCtx, track); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := st.Handler.Execute(trackCtx, track); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		r.failTrack(trackCtx, logger, st, track, err)
		return nil
	}

	if track.Status == st.Processing || track.Status == "" {
		track.Status = st.Done
	}
	if err := r.store.Update(trackCtx, track); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(track.Status)))
	return nil
}

func (r *Runner) failTrack(ctx context.Context, logger *slog.Logger, st Stage, track *catalog.Track, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = st.Name + " failed"
	}

	status := services.FailureStatus(stageErr)
	if status == catalog.StatusReview {
		track.Status = catalog.StatusReview
		track.NeedsReview = true
		track.ReviewReason = message
		track.ErrorMessage = message
	} else {
		track.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(status)),
		logging.Error(stageErr))

	if err := r.store.Update(ctx, track); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if r.notifier != nil {
		contextLabel := fmt.Sprintf("%s (track #%d)", st.Name, track.ID)
		if err := r.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
			"error":   stageErr,
			"context": contextLabel,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func (r *Runner) flushStage(st Stage, logger *slog.Logger) {
	type flusher interface{ Flush() error }
	f, ok := st.Handler.(flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		logger.Warn("stage flush failed",
			logging.String(logging.FieldStage, st.Name),
			logging.Error(err))
	}
}

// publishStageEvent sends the stage's completion notification with its tally
// when the handler keeps one.
func (r *Runner) publishStageEvent(ctx context.Context, logger *slog.Logger, st Stage) {
	if st.Event == "" {
		return
	}
	tally, ok := st.Handler.(interface{ Tally() (int, int) })
	if !ok {
		return
	}
	a, b := tally.Tally()
	var payload notifications.Payload
	switch st.Event {
	case notifications.EventEnrichmentCompleted:
		payload = notifications.Payload{"resolved": a, "missing": b}
	case notifications.EventScoringCompleted:
		payload = notifications.Payload{"scored": a, "ungraded": b}
	default:
		return
	}
	r.publish(ctx, logger, st.Event, payload)
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("run notification skipped during shutdown")
			return
		}
		logger.Debug("run notification failed",
			logging.String("event", string(event)),
			logging.Error(err))
	}
}

// claimableCount sums tracks currently sitting in any stage's claim statuses.
func (r *Runner) claimableCount(ctx context.Context, stages []Stage) int {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return 0
	}
	seen := make(map[catalog.Status]bool)
	total := 0
	for _, st := range stages {
		for _, status := range st.Claim {
			if seen[status] {
				continue
			}
			seen[status] = true
			total += stats[status]
		}
	}
	return total
}
