package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
	"cadence/internal/notifications"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv>",
		Short: "Import catalog rows from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				summary, err := importCatalog(cmd.Context(), ctx, cmd.ErrOrStderr(), store, args[0])
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, importPayload(summary))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d of %d rows from %s\n", summary.Imported, summary.Rows, args[0])
				if summary.Duplicates > 0 {
					fmt.Fprintf(out, "Skipped %d duplicates already in the catalog\n", summary.Duplicates)
				}
				if summary.Skipped > 0 {
					fmt.Fprintf(out, "Skipped %d rows missing title or artist\n", summary.Skipped)
				}
				return nil
			})
		},
	}
}

// importCatalog runs the CSV import and publishes the completion event.
// Notification failures are reported on errOut but never fail the import.
func importCatalog(cmdCtx context.Context, ctx *commandContext, errOut io.Writer, store *catalog.Store, path string) (*catalog.ImportSummary, error) {
	summary, err := store.ImportCSV(cmdCtx, path)
	if err != nil {
		return nil, err
	}

	notifier := notifications.NewService(ctx.configValue())
	if notifyErr := notifier.Publish(cmdCtx, notifications.EventImportCompleted, notifications.Payload{
		"imported": summary.Imported,
		"skipped":  summary.Duplicates,
		"path":     path,
	}); notifyErr != nil {
		fmt.Fprintf(errOut, "warn: import notification failed: %v\n", notifyErr)
	}
	return summary, nil
}

func importPayload(summary *catalog.ImportSummary) map[string]any {
	return map[string]any{
		"rows":       summary.Rows,
		"imported":   summary.Imported,
		"duplicates": summary.Duplicates,
		"skipped":    summary.Skipped,
	}
}
