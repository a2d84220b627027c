package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
	"cadence/internal/notifications"
	"cadence/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "run [csv]",
		Short: "Import, enrich, annotate, score, and export in one pass",
		Long: "Run the whole pipeline: import the given CSV when provided, drive every\n" +
			"claimable track through enrichment, annotation, and scoring, then export\n" +
			"the scored catalog. Interrupting the run leaves the catalog resumable.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				out := cmd.OutOrStdout()
				result := make(map[string]any)

				if len(args) == 1 {
					summary, err := importCatalog(signalCtx, ctx, cmd.ErrOrStderr(), store, args[0])
					if err != nil {
						return err
					}
					result["import"] = importPayload(summary)
					if !ctx.JSONMode() {
						fmt.Fprintf(out, "Imported %d of %d rows from %s\n", summary.Imported, summary.Rows, args[0])
					}
				}

				stages, err := pipeline.BuildStages(cfg, logger)
				if err != nil {
					return err
				}
				runner := pipeline.NewRunner(cfg, store, notifications.NewService(cfg), logger)
				summary, err := runner.RunStages(signalCtx, stages...)
				if err != nil {
					return err
				}
				result["run"] = runSummaryPayload(summary)
				if !ctx.JSONMode() {
					if err := printRunSummary(cmd, ctx, summary); err != nil {
						return err
					}
				}

				exportPath := resolveExportPath(cfg.Paths.ExportDir, outputFlag)
				exported, err := store.ExportCSV(signalCtx, exportPath)
				if err != nil {
					return err
				}
				result["export"] = map[string]any{"rows": exported.Rows, "path": exported.Path}

				coverage, err := featureCoverageLine(signalCtx, store)
				if err != nil {
					return err
				}
				result["coverage"] = coverage

				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(out, "Exported %d tracks to %s\n", exported.Rows, exported.Path)
				fmt.Fprintf(out, "Feature coverage: %s\n", coverage)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination for the exported CSV")
	return cmd
}

// featureCoverageLine summarizes resolved counts per feature against the
// catalog total, e.g. "tempo_bpm 40/45, mode 38/45".
func featureCoverageLine(cmdCtx context.Context, store *catalog.Store) (string, error) {
	health, err := store.Health(cmdCtx)
	if err != nil {
		return "", err
	}
	coverage, err := store.FeatureCoverage(cmdCtx)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(catalog.AllFeatures()))
	for _, feature := range catalog.AllFeatures() {
		parts = append(parts, fmt.Sprintf("%s %d/%d", feature, coverage[feature], health.Total))
	}
	return strings.Join(parts, ", "), nil
}
