package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/cache"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/services"
	"github.com/desertthunder/ytsync/internal/shared"
)

// resolvedTrack pairs a source track with the destination video ID it
// resolved to.
type resolvedTrack struct {
	track   models.Track
	videoID string
}

// Engine orchestrates one reconciliation run: fetch both snapshots,
// resolve every source track to a video ID, compute the minimal plan,
// execute it insert-first.
type Engine struct {
	source services.SourceProvider
	dest   services.DestinationProvider
	cache  *cache.VideoCache
	logger *log.Logger
	now    func() time.Time
}

// EngineOpts contains configuration options for creating an Engine.
type EngineOpts struct {
	Source services.SourceProvider
	Dest   services.DestinationProvider
	Cache  *cache.VideoCache
	Logger *log.Logger
	Now    func() time.Time // defaults to time.Now
}

// NewEngine creates a reconciliation engine.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		source: opts.Source,
		dest:   opts.Dest,
		cache:  opts.Cache,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// sendProgress delivers an update without blocking. A nil or full channel
// drops the update; progress is advisory and never stalls the run.
func sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}

// resolveVideoID finds the destination video ID for a track.
//
// Three steps, cheapest first: match against the destination snapshot
// (free, and authoritative since the item is already in the playlist),
// then the disk cache, then a search. Snapshot and search hits are
// written through to the cache. Returns "" when nothing resolves.
//
// A quota-exhausted search is returned as an error: every remaining
// search is doomed, and treating the miss as "track gone from source"
// would plan deletes against destination content that is still wanted.
func (e *Engine) resolveVideoID(ctx context.Context, track models.Track, items []models.PlaylistItem) (string, error) {
	for _, item := range items {
		if trackMatchesItem(track, item.Title) {
			e.cache.Set(track.Title, track.Artist, item.VideoID)
			return item.VideoID, nil
		}
	}

	if cached := e.cache.Get(track.Title, track.Artist); cached != "" {
		e.logger.Debug("cache hit", "track", track.Title)
		return cached, nil
	}

	e.logger.Debug("searching", "track", track.Title, "artist", track.Artist)
	results, err := e.dest.Search(ctx, track.Title, track.Artist)
	if err != nil {
		if errors.Is(err, shared.ErrQuotaExceeded) {
			return "", err
		}
		e.logger.Warn("search failed", "track", track.Title, "err", err)
		return "", nil
	}
	if len(results) == 0 {
		return "", nil
	}

	videoID := bestMatch(results, track)
	if videoID == "" {
		// Nothing scored positively; trust the search ranking.
		videoID = results[0].VideoID
	}

	e.cache.Set(track.Title, track.Artist, videoID)
	return videoID, nil
}

// buildTargetList resolves every source track in order. Unresolvable
// tracks are dropped from the target with an error message; the run
// proceeds with what resolved. Quota exhaustion aborts resolution and
// is returned as an error.
func (e *Engine) buildTargetList(ctx context.Context, tracks []models.Track, items []models.PlaylistItem, progress chan<- ProgressUpdate) ([]resolvedTrack, []string, error) {
	var target []resolvedTrack
	var errs []string

	for i, track := range tracks {
		sendProgress(progress, resolvingUpdate(i+1, len(tracks), track))

		videoID, err := e.resolveVideoID(ctx, track, items)
		if err != nil {
			return nil, nil, fmt.Errorf("search for %s by %s: %w", track.Title, track.Artist, err)
		}
		if videoID == "" {
			errs = append(errs, fmt.Sprintf("No match: %s by %s", track.Title, track.Artist))
			continue
		}
		target = append(target, resolvedTrack{track: track, videoID: videoID})
	}

	return target, errs, nil
}

// executeOperations runs the plan against the destination playlist,
// inserts first in ascending position order, then deletes by item ID.
//
// A conflict error means the playlist state diverged mid-run and every
// remaining position assumption is void, so the run stops immediately.
// Quota exhaustion also stops the run since nothing further can succeed.
// Any other failure is recorded and the run continues.
func (e *Engine) executeOperations(ctx context.Context, inserts, deletes []models.SyncOp, playlistID string, progress chan<- ProgressUpdate) (added, removed int, errs []string) {
	e.logger.Info("executing plan", "inserts", len(inserts), "deletes", len(deletes))

	for i, op := range inserts {
		sendProgress(progress, insertUpdate(i+1, len(inserts), op))

		err := e.dest.Insert(ctx, playlistID, op.VideoID, op.Title, op.Position)
		if err == nil {
			added++
			continue
		}

		if errors.Is(err, shared.ErrSyncAborted) {
			errs = append(errs, fmt.Sprintf("ABORT: %s - %v", op.Title, err))
			e.logger.Error("sync aborted during insert", "title", op.Title, "err", err)
			sendProgress(progress, abortedUpdate(err.Error()))
			return added, removed, errs
		}

		errs = append(errs, fmt.Sprintf("Error adding %s: %v", op.Title, err))
		if errors.Is(err, shared.ErrQuotaExceeded) {
			e.logger.Error("quota exhausted during insert", "title", op.Title)
			return added, removed, errs
		}
	}

	for i, op := range deletes {
		sendProgress(progress, deleteUpdate(i+1, len(deletes), op))

		err := e.dest.Delete(ctx, op.ItemID, op.Title)
		if err == nil {
			removed++
			continue
		}

		if errors.Is(err, shared.ErrSyncAborted) {
			errs = append(errs, fmt.Sprintf("ABORT: %s - %v", op.Title, err))
			e.logger.Error("sync aborted during delete", "title", op.Title, "err", err)
			sendProgress(progress, abortedUpdate(err.Error()))
			return added, removed, errs
		}

		errs = append(errs, fmt.Sprintf("Error removing %s: %v", op.Title, err))
		if errors.Is(err, shared.ErrQuotaExceeded) {
			e.logger.Error("quota exhausted during delete", "title", op.Title)
			return added, removed, errs
		}
	}

	return added, removed, errs
}

// Sync performs one full reconciliation run and returns its result.
// progress may be nil. The cache is saved before returning on every path
// that got far enough to touch it.
//
// Success reflects execution only: a run that resolved nothing but
// mutated cleanly still succeeds, with the resolution misses recorded
// in Errors.
func (e *Engine) Sync(ctx context.Context, sourcePlaylistID, destPlaylistID string, progress chan<- ProgressUpdate) *models.SyncResult {
	start := e.now()

	e.logger.Info("starting sync", "cache_entries", e.cache.Len())

	sendProgress(progress, fetchSourceUpdate(e.source.Name()))
	tracks, err := e.source.GetPlaylistTracks(ctx, sourcePlaylistID)
	if err != nil {
		return models.FailedResult("Failed to fetch %s playlist: %v", e.source.Name(), err)
	}
	e.logger.Info("fetched source playlist", "service", e.source.Name(), "tracks", len(tracks))

	sendProgress(progress, fetchDestUpdate(e.dest.Name()))
	items, err := e.dest.GetPlaylistItems(ctx, destPlaylistID)
	if err != nil {
		return models.FailedResult("Failed to fetch %s playlist: %v", e.dest.Name(), err)
	}
	e.logger.Info("fetched destination playlist", "service", e.dest.Name(), "items", len(items))

	target, resolveErrs, err := e.buildTargetList(ctx, tracks, items, progress)
	if err != nil {
		e.logger.Error("quota exhausted during resolution", "err", err)
		e.cache.Save()
		sendProgress(progress, abortedUpdate(err.Error()))
		return models.FailedResult("Quota exhausted before any mutation: %v", err)
	}

	inserts, deletes := computeOperations(target, items)
	sendProgress(progress, reconcilingUpdate(len(inserts), len(deletes)))

	if len(inserts) == 0 && len(deletes) == 0 {
		e.logger.Info("playlists already in sync")
		e.cache.Save()
		sendProgress(progress, doneUpdate(0, 0))
		return &models.SyncResult{
			Success:     true,
			Errors:      resolveErrs,
			SourceCount: len(tracks),
			DestCount:   len(items),
			Duration:    e.now().Sub(start).Seconds(),
		}
	}

	added, removed, execErrs := e.executeOperations(ctx, inserts, deletes, destPlaylistID, progress)
	e.cache.Save()

	duration := e.now().Sub(start)
	e.logger.Info("sync finished",
		"duration", duration.Round(time.Millisecond),
		"added", added,
		"removed", removed,
		"errors", len(execErrs))

	if len(execErrs) == 0 {
		sendProgress(progress, doneUpdate(added, removed))
	}

	return &models.SyncResult{
		Success:       len(execErrs) == 0,
		TracksAdded:   added,
		TracksRemoved: removed,
		Errors:        append(resolveErrs, execErrs...),
		SourceCount:   len(tracks),
		DestCount:     len(items) + added - removed,
		Duration:      duration.Seconds(),
	}
}
