package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
)

// exportFileName is the canonical name for the scored catalog export.
const exportFileName = "scored_tracks_sorted.csv"

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the scored catalog to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				path := resolveExportPath(cfg.Paths.ExportDir, outputFlag)
				summary, err := store.ExportCSV(cmd.Context(), path)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"rows": summary.Rows, "path": summary.Path})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tracks to %s\n", summary.Rows, summary.Path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination for the exported CSV")
	return cmd
}

func resolveExportPath(exportDir, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	return filepath.Join(exportDir, exportFileName)
}
