package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/notifications"
	"cadence/internal/pipeline"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Resolve missing features for pending tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNamedStage(cmd, ctx, pipeline.StageEnrich)
		},
	}
}

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate",
		Short: "Generate listening guidance for enriched tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNamedStage(cmd, ctx, pipeline.StageAnnotate)
		},
	}
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Compute composite scores and letter grades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNamedStage(cmd, ctx, pipeline.StageScore)
		},
	}
}

func runNamedStage(cmd *cobra.Command, ctx *commandContext, name string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if name == pipeline.StageAnnotate && !cfg.AnnotationEnabled() {
		return errors.New("annotation is not configured; set llm.enabled and llm.api_key in the config file")
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newRunLogger(cfg)
	if err != nil {
		return err
	}

	return ctx.withStore(func(store *catalog.Store) error {
		stages, err := pipeline.BuildStages(cfg, logger)
		if err != nil {
			return err
		}
		st, ok := pipeline.Find(stages, name)
		if !ok {
			return fmt.Errorf("stage %q is not available", name)
		}
		runner := pipeline.NewRunner(cfg, store, notifications.NewService(cfg), logger)
		summary, err := runner.RunStages(signalCtx, st)
		if err != nil {
			return err
		}
		return printRunSummary(cmd, ctx, summary)
	})
}

// newRunLogger opens the file-backed logger and prunes aged log files,
// keeping the active cadence.log regardless of its modification time.
func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{filepath.Join(cfg.Paths.LogDir, "cadence.log")},
	})
	return logger, nil
}

func printRunSummary(cmd *cobra.Command, ctx *commandContext, summary *pipeline.Summary) error {
	if summary == nil {
		return nil
	}
	if ctx.JSONMode() {
		return writeJSON(cmd, runSummaryPayload(summary))
	}

	out := cmd.OutOrStdout()
	for _, st := range summary.Stages {
		line := fmt.Sprintf("%s: %d processed", st.Stage, st.Processed)
		if st.Failed > 0 {
			line += fmt.Sprintf(", %d failed", st.Failed)
		}
		fmt.Fprintf(out, "%s (%s)\n", line, runDuration(st.Duration))
	}
	if len(summary.Stages) > 1 {
		fmt.Fprintf(out, "Total: %d processed, %d failed (%s)\n",
			summary.Processed, summary.Failed, runDuration(summary.Duration))
	}
	return nil
}

func runSummaryPayload(summary *pipeline.Summary) map[string]any {
	stages := make([]map[string]any, 0, len(summary.Stages))
	for _, st := range summary.Stages {
		stages = append(stages, map[string]any{
			"stage":     st.Stage,
			"processed": st.Processed,
			"failed":    st.Failed,
			"duration":  st.Duration.String(),
		})
	}
	return map[string]any{
		"run_id":    summary.RunID,
		"stages":    stages,
		"processed": summary.Processed,
		"failed":    summary.Failed,
		"duration":  summary.Duration.String(),
	}
}

func runDuration(d time.Duration) string {
	rounded := d.Round(time.Second)
	if rounded <= 0 {
		return "under 1s"
	}
	return rounded.String()
}
