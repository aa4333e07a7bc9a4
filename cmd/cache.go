package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheStats prints the size of the resolved video ID cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	videoCache := r.openCache()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"path":    r.config.CacheFile(),
			"entries": videoCache.Len(),
		}, true)
	}

	r.writePlain("Cache file: %s\n", r.config.CacheFile())
	r.writePlain("Entries:    %d\n", videoCache.Len())
	return nil
}

// CachePrune drops expired entries and rewrites the cache file.
//
// Loading already prunes; saving makes the trimmed state durable.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	videoCache := r.openCache()
	videoCache.Save()

	r.writePlain("✓ Cache pruned: %d entries remain\n", videoCache.Len())
	return nil
}

// CacheClear deletes every cached video ID mapping.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	videoCache := r.openCache()
	dropped := videoCache.Len()
	videoCache.Clear()
	videoCache.Save()

	r.logger.Info("cleared video cache", "dropped", dropped)
	r.writePlain("✓ Cache cleared: %d entries dropped\n", dropped)
	return nil
}

// cacheCommand manages the resolved video ID cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the resolved video ID cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache size and location",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit stats as JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:   "prune",
				Usage:  "Drop expired entries",
				Action: r.CachePrune,
			},
			{
				Name:   "clear",
				Usage:  "Drop all cached entries",
				Action: r.CacheClear,
			},
		},
	}
}
