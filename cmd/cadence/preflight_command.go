package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Verify directories, catalog, cache, and provider reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			failed := 0
			for _, result := range results {
				if !result.Passed {
					failed++
				}
			}

			if ctx.JSONMode() {
				checks := make([]map[string]any, 0, len(results))
				for _, result := range results {
					checks = append(checks, map[string]any{
						"name":   result.Name,
						"passed": result.Passed,
						"detail": result.Detail,
					})
				}
				if err := writeJSON(cmd, map[string]any{
					"passed": preflight.AllPassed(results),
					"checks": checks,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := isInteractive(out)
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				if failed == 0 {
					fmt.Fprintln(out, "All preflight checks passed")
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d preflight checks failed", failed, len(results))
			}
			return nil
		},
	}
}
