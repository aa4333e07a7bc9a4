package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/ytsync/internal/formatter"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/repositories"
	"github.com/desertthunder/ytsync/internal/shared"
	"github.com/desertthunder/ytsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun performs one full Spotify → YouTube reconciliation run.
//
// The run is guarded by a cross-process lock so overlapping invocations
// (cron plus manual) never race on playlist state. The status file is
// written before and after so external pollers see "running" while the
// run is in flight.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	sourceID := cmd.String("source")
	if sourceID == "" {
		sourceID = r.config.Sync.SourcePlaylistID
	}
	destID := cmd.String("dest")
	if destID == "" {
		destID = r.config.Sync.DestPlaylistID
	}

	if sourceID == "" || destID == "" {
		return fmt.Errorf("%w: source and destination playlist IDs must be set via flags or config", shared.ErrMissingArgument)
	}

	if r.source == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if r.dest == nil {
		return fmt.Errorf("%w: YouTube service not initialized", shared.ErrServiceUnavailable)
	}

	if err := os.MkdirAll(r.config.Sync.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	lock := shared.NewRunLock(r.config.LockFile())
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			r.logger.Warn("another sync is already running", "lock", lock.Path())
			return err
		}
		return err
	}
	defer lock.Release()

	if err := shared.WriteRunningStatus(r.config.StatusFile()); err != nil {
		r.logger.Warn("failed to write running status", "err", err)
	}

	r.writePlain("Starting playlist sync...\n")
	r.writePlain("Source: %s\n", sourceID)
	r.writePlain("Destination: %s\n\n", destID)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchSource, tasks.FetchDest:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.Resolving:
				r.writePlain("   🔍 %s\n", update.Message)
			case tasks.Reconciling:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.Inserting:
				r.writePlain("   %s\n", update.Message)
			case tasks.Deleting:
				r.writePlain("   %s\n", update.Message)
			case tasks.Aborted:
				r.writePlain("\n⛔ %s\n", update.Message)
			}
		}
	}()

	videoCache := r.openCache()
	engine := tasks.NewEngine(tasks.EngineOpts{
		Source: r.source,
		Dest:   r.dest,
		Cache:  videoCache,
		Logger: r.logger,
	})

	result := engine.Sync(ctx, sourceID, destID, progressCh)
	close(progressCh)
	<-progressDone

	r.recordRun(result)

	if err := shared.WriteStatus(r.config.StatusFile(), statusFromResult(result)); err != nil {
		r.logger.Warn("failed to write status file", "err", err)
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("%s", formatter.SyncResultText(result))

	if !result.Success {
		return fmt.Errorf("sync failed with %d errors", len(result.Errors))
	}
	return nil
}

// SyncStatus prints the status file from the last run.
func (r *Runner) SyncStatus(ctx context.Context, cmd *cli.Command) error {
	status, err := shared.ReadStatus(r.config.StatusFile())
	if err != nil {
		if os.IsNotExist(err) {
			r.writePlain("No sync has run yet.\n")
			return nil
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	r.writePlain("%s", formatter.StatusText(status))
	return nil
}

// recordRun persists the run outcome to the history database. Persistence
// is best-effort: a missing or broken database never fails a run that
// already mutated the playlist.
func (r *Runner) recordRun(result *models.SyncResult) {
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("skipping run history", "err", err)
		return
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	run := models.NewSyncRun(0, *result)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
		return
	}

	r.logger.Info("recorded run", "sequence", run.Sequence(), "id", run.ID())
}

func statusFromResult(result *models.SyncResult) shared.Status {
	status := shared.Status{
		Status:        "success",
		TracksAdded:   result.TracksAdded,
		TracksRemoved: result.TracksRemoved,
		SourceCount:   result.SourceCount,
		DestCount:     result.DestCount,
	}
	if !result.Success {
		status.Status = "failed"
	}
	if len(result.Errors) > 0 {
		last := result.Errors[len(result.Errors)-1]
		status.LastError = &last
	}
	return status
}

// HistoryList prints recent runs from the history database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	runs, err := repo.ListRecent(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		summaries := make([]models.SyncResult, 0, len(runs))
		for _, run := range runs {
			summaries = append(summaries, run.Result())
		}
		return r.writeJSON(summaries, true)
	}

	r.writePlain("%s", formatter.HistoryText(runs))
	return nil
}

// syncCommand handles sync runs and status inspection
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize the Spotify playlist to YouTube",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full reconciliation pass",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Spotify playlist ID (defaults to config)",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "YouTube playlist ID (defaults to config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the result as JSON",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "status",
				Usage: "Show the outcome of the last run",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the status as JSON",
					},
				},
				Action: r.SyncStatus,
			},
		},
	}
}

// historyCommand lists persisted run history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit history as JSON",
			},
		},
		Action: r.HistoryList,
	}
}
