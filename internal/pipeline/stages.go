package pipeline

import (
	"context"
	"log/slog"

	"cadence/internal/annotate"
	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/enrich"
	"cadence/internal/featurecache"
	"cadence/internal/notifications"
	"cadence/internal/scoring"
	"cadence/internal/services/llm"
	"cadence/internal/stage"
)

// Stage binds a handler to the statuses it claims and produces. Event, when
// set, names the notification published after the stage's pass completes.
type Stage struct {
	Name       string
	Claim      []catalog.Status
	Processing catalog.Status
	Done       catalog.Status
	Handler    stage.Handler
	Event      notifications.Event
}

// Stage names used by the CLI to select a single pass.
const (
	StageEnrich   = "enrich"
	StageAnnotate = "annotate"
	StageScore    = "score"
)

// BuildStages assembles the pipeline from configuration: the provider chain
// executor over the resolution cache, the annotator when an API key is
// configured, and the scorer. The annotate stage is omitted entirely when
// annotation is not configured so enriched tracks flow straight to scoring.
func BuildStages(cfg *config.Config, logger *slog.Logger) ([]Stage, error) {
	cache := featurecache.NewCache(cfg.Paths.CacheFile, cfg.Enrichment.CacheFlushInterval, logger)

	providers, err := enrich.DefaultProviders(cfg, nil)
	if err != nil {
		return nil, err
	}
	executor := enrich.NewExecutor(cfg, cache, providers, logger)

	stages := []Stage{
		{
			Name:       StageEnrich,
			Claim:      []catalog.Status{catalog.StatusPending},
			Processing: catalog.StatusEnriching,
			Done:       catalog.StatusEnriched,
			Handler:    enrich.NewStage(executor, logger),
			Event:      notifications.EventEnrichmentCompleted,
		},
	}

	if cfg.AnnotationEnabled() {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		stages = append(stages, Stage{
			Name:       StageAnnotate,
			Claim:      []catalog.Status{catalog.StatusEnriched},
			Processing: catalog.StatusAnnotating,
			Done:       catalog.StatusAnnotated,
			Handler:    annotate.New(client, logger),
		})
	}

	// Score claims enriched tracks too so an annotation-free catalog still
	// reaches grades.
	stages = append(stages, Stage{
		Name:       StageScore,
		Claim:      []catalog.Status{catalog.StatusEnriched, catalog.StatusAnnotated},
		Processing: catalog.StatusScoring,
		Done:       catalog.StatusScored,
		Handler:    scoring.NewStage(scoring.NewScorer(cfg), logger),
		Event:      notifications.EventScoringCompleted,
	})

	return stages, nil
}

// Find returns the named stage from the assembled set.
func Find(stages []Stage, name string) (Stage, bool) {
	for _, st := range stages {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}

// Health runs every stage's health check.
func Health(ctx context.Context, stages ...Stage) []stage.Health {
	out := make([]stage.Health, 0, len(stages))
	for _, st := range stages {
		out = append(out, st.Handler.HealthCheck(ctx))
	}
	return out
}
