package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/featurecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the feature resolution cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))

	return cacheCmd
}

func openCache(ctx *commandContext) (*featurecache.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return featurecache.NewCache(cfg.Paths.CacheFile, 1, nil), nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached feature resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			entries := cache.List()
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"entries": entries})
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Feature cache is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				mode := entry.Mode
				if mode == "" {
					mode = "-"
				}
				rows = append(rows, []string{
					entry.Key,
					numberCell(entry.TempoBPM),
					mode,
					numberCell(entry.LyricValence),
					numberCell(entry.LyricArousal),
					entry.CachedAt.Format("2006-01-02 15:04"),
				})
			}
			table := renderTable(
				[]string{"Key", "Tempo", "Mode", "Valence", "Arousal", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
				isInteractive(cmd.OutOrStdout()),
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and per-feature coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			entries := cache.List()
			var tempo, mode, valence, arousal int
			for _, entry := range entries {
				if entry.TempoBPM != nil {
					tempo++
				}
				if entry.Mode != "" {
					mode++
				}
				if entry.LyricValence != nil {
					valence++
				}
				if entry.LyricArousal != nil {
					arousal++
				}
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"path":    cache.Path(),
					"entries": len(entries),
					"tempo":   tempo,
					"mode":    mode,
					"valence": valence,
					"arousal": arousal,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache file: %s\n", cache.Path())
			fmt.Fprintf(out, "Entries: %d\n", len(entries))
			fmt.Fprintf(out, "With tempo: %d\n", tempo)
			fmt.Fprintf(out, "With mode: %d\n", mode)
			fmt.Fprintf(out, "With valence: %d\n", valence)
			fmt.Fprintf(out, "With arousal: %d\n", arousal)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries\n", count)
			return nil
		},
	}
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove one cache entry by its normalized key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			if err := cache.Remove(args[0]); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed cache entry %s\n", args[0])
			return nil
		},
	}
}
