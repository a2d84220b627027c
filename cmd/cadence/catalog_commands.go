package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the track catalog",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogClearCommand(ctx))
	catalogCmd.AddCommand(newCatalogClearFailedCommand(ctx))
	catalogCmd.AddCommand(newCatalogRetryCommand(ctx))
	catalogCmd.AddCommand(newCatalogHealthCommand(ctx))

	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]catalog.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := catalog.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(store *catalog.Store) error {
				tracks, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					items := make([]map[string]any, 0, len(tracks))
					for _, track := range tracks {
						items = append(items, map[string]any{
							"id":              track.ID,
							"title":           track.Title,
							"artist":          track.Artist,
							"status":          string(track.Status),
							"tempo_bpm":       track.TempoBPM,
							"mode":            track.Mode,
							"lyric_valence":   track.LyricValence,
							"lyric_arousal":   track.LyricArousal,
							"composite_score": track.CompositeScore,
							"letter_grade":    track.LetterGrade,
						})
					}
					return writeJSON(cmd, map[string]any{"tracks": items})
				}

				if len(tracks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
					return nil
				}

				rows := make([][]string, 0, len(tracks))
				for _, track := range tracks {
					grade := track.LetterGrade
					if grade == "" {
						grade = "-"
					}
					rows = append(rows, []string{
						strconv.FormatInt(track.ID, 10),
						track.Title,
						track.Artist,
						string(track.Status),
						numberCell(track.TempoBPM),
						textCell(track.Mode),
						numberCell(track.CompositeScore),
						grade,
					})
				}
				table := renderTable(
					[]string{"ID", "Title", "Artist", "Status", "Tempo", "Mode", "Total", "Grade"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
					isInteractive(cmd.OutOrStdout()),
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by track status (repeatable)")
	return cmd
}

func newCatalogClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every catalog track",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d catalog tracks\n", removed)
				return nil
			})
		},
	}
}

func newCatalogClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed catalog tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				removed, err := store.ClearFailed(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed tracks\n", removed)
				return nil
			})
		},
	}
}

func newCatalogRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [trackID...]",
		Short: "Return failed tracks to pending",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withStore(func(store *catalog.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					updated, err := store.RetryFailed(cmd.Context())
					if err != nil {
						return err
					}
					if ctx.JSONMode() {
						return writeJSON(cmd, map[string]any{"retried": updated})
					}
					fmt.Fprintf(out, "Retried %d failed tracks\n", updated)
					return nil
				}

				for _, id := range ids {
					track, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if track == nil {
						fmt.Fprintf(out, "Track %d not found\n", id)
						continue
					}
					if track.Status != catalog.StatusFailed {
						fmt.Fprintf(out, "Track %d is not in failed state\n", id)
						continue
					}
					updated, err := store.RetryFailed(cmd.Context(), id)
					if err != nil {
						return err
					}
					if updated > 0 {
						fmt.Fprintf(out, "Track %d reset for retry\n", id)
					} else {
						fmt.Fprintf(out, "Track %d is not in failed state\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newCatalogHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check catalog database health (schema, integrity, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *catalog.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"db_path":           health.DBPath,
						"database_exists":   health.DatabaseExists,
						"database_readable": health.DatabaseReadable,
						"schema_version":    health.SchemaVersion,
						"table_exists":      health.TableExists,
						"columns_present":   health.ColumnsPresent,
						"missing_columns":   health.MissingColumns,
						"integrity_check":   health.IntegrityCheck,
						"total_tracks":      health.TotalTracks,
						"error":             health.Error,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database path: %s\n", health.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", health.SchemaVersion)
				fmt.Fprintf(out, "tracks table present: %s\n", yesNo(health.TableExists))
				if len(health.ColumnsPresent) > 0 {
					cols := append([]string(nil), health.ColumnsPresent...)
					sort.Strings(cols)
					fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
				}
				if len(health.MissingColumns) > 0 {
					missing := append([]string(nil), health.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Total tracks: %d\n", health.TotalTracks)
				if health.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", health.Error)
				}
				return nil
			})
		},
	}
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid track id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
