package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
	"cadence/internal/featurecache"
	"cadence/internal/logging"
	"cadence/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog counts, feature coverage, and stage health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				coverage, err := store.FeatureCoverage(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				for _, count := range stats {
					total += count
				}

				cache := featurecache.NewCache(cfg.Paths.CacheFile, 1, logging.NewNop())

				stages, err := pipeline.BuildStages(cfg, logging.NewNop())
				if err != nil {
					return err
				}
				checks := pipeline.Health(cmd.Context(), stages...)

				if ctx.JSONMode() {
					statuses := make(map[string]int, len(stats))
					for status, count := range stats {
						statuses[string(status)] = count
					}
					features := make(map[string]int, len(coverage))
					for feature, count := range coverage {
						features[string(feature)] = count
					}
					stageChecks := make([]map[string]any, 0, len(checks))
					for _, check := range checks {
						stageChecks = append(stageChecks, map[string]any{
							"name":   check.Name,
							"ready":  check.Ready,
							"detail": check.Detail,
						})
					}
					return writeJSON(cmd, map[string]any{
						"total":         total,
						"statuses":      statuses,
						"coverage":      features,
						"cache_entries": cache.Count(),
						"stages":        stageChecks,
					})
				}

				out := cmd.OutOrStdout()
				colorize := isInteractive(out)

				for _, line := range renderSectionHeader("Catalog", colorize) {
					fmt.Fprintln(out, line)
				}
				if total == 0 {
					fmt.Fprintln(out, statusIndent+"Catalog is empty")
				} else {
					rows := make([][]string, 0, len(stats))
					for _, status := range catalog.AllStatuses() {
						if count := stats[status]; count > 0 {
							rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
						}
					}
					table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}, colorize)
					fmt.Fprintln(out, table)
					fmt.Fprintf(out, "%sTotal: %d\n", statusIndent, total)
				}
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Features", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, feature := range catalog.AllFeatures() {
					fmt.Fprintf(out, "%s%-16s %d of %d\n", statusIndent, string(feature)+":", coverage[feature], total)
				}
				fmt.Fprintf(out, "%s%-16s %d entries\n", statusIndent, "cache:", cache.Count())
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Stages", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, check := range checks {
					kind := statusOK
					if !check.Ready {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
				}
				return nil
			})
		},
	}
}
