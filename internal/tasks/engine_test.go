package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/ytsync/internal/cache"
	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

type mockSource struct {
	tracks []models.Track
	err    error
}

func (m *mockSource) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tracks, nil
}

func (m *mockSource) Name() string { return "Spotify" }

type mockDest struct {
	items         []models.PlaylistItem
	itemsErr      error
	searchResults map[string][]models.SearchResult
	searchErr     error
	searchCalls   int

	inserts     []models.SyncOp
	deletes     []string
	insertErrAt int // 1-based call number that fails; 0 disables
	insertErr   error
	deleteErr   error
	insertCalls int
}

func (m *mockDest) GetPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

func (m *mockDest) Search(ctx context.Context, title, artist string) ([]models.SearchResult, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults[title], nil
}

func (m *mockDest) Insert(ctx context.Context, playlistID, videoID, title string, position int) error {
	m.insertCalls++
	if m.insertErrAt > 0 && m.insertCalls >= m.insertErrAt && m.insertErr != nil {
		return m.insertErr
	}
	m.inserts = append(m.inserts, models.SyncOp{VideoID: videoID, Title: title, Position: position})
	return nil
}

func (m *mockDest) Delete(ctx context.Context, itemID, title string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, itemID)
	return nil
}

func (m *mockDest) Name() string { return "YouTube" }

func newTestEngine(t *testing.T, source *mockSource, dest *mockDest) *Engine {
	t.Helper()
	c := cache.New(cache.Opts{Path: t.TempDir() + "/cache.json"})
	return NewEngine(EngineOpts{Source: source, Dest: dest, Cache: c})
}

func track(title, artist string) models.Track {
	return models.Track{Title: title, Artist: artist, SpotifyID: "sp-" + title}
}

func officialResult(id, title, artist string) []models.SearchResult {
	return []models.SearchResult{
		{VideoID: id, Title: fmt.Sprintf("%s - %s (Official Audio)", artist, title), Channel: artist},
	}
}

func TestEngineSync(t *testing.T) {
	ctx := context.Background()

	t.Run("empty destination inserts every track", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A"), track("Song B", "Artist B")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Song A": officialResult("vid-a", "Song A", "Artist A"),
				"Song B": officialResult("vid-b", "Song B", "Artist B"),
			},
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if result.TracksAdded != 2 || result.TracksRemoved != 0 {
			t.Errorf("expected +2 -0, got +%d -%d", result.TracksAdded, result.TracksRemoved)
		}
		if result.SourceCount != 2 || result.DestCount != 2 {
			t.Errorf("expected counts 2/2, got %d/%d", result.SourceCount, result.DestCount)
		}
		if len(dest.inserts) != 2 || dest.inserts[0].VideoID != "vid-a" || dest.inserts[1].VideoID != "vid-b" {
			t.Errorf("unexpected insert order: %v", dest.inserts)
		}
	})

	t.Run("matching playlist is a no-op", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A")}}
		dest := &mockDest{
			items: []models.PlaylistItem{
				{ItemID: "i1", VideoID: "vid-a", Title: "Artist A - Song A (Official Audio)", Position: 0},
			},
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if result.TracksAdded != 0 || result.TracksRemoved != 0 {
			t.Errorf("expected no-op, got +%d -%d", result.TracksAdded, result.TracksRemoved)
		}
		if dest.searchCalls != 0 {
			t.Errorf("direct match should skip search, got %d search calls", dest.searchCalls)
		}
	})

	t.Run("cache hit skips search", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A")}}
		dest := &mockDest{}

		c := cache.New(cache.Opts{Path: t.TempDir() + "/cache.json"})
		c.Set("Song A", "Artist A", "vid-a")
		engine := NewEngine(EngineOpts{Source: source, Dest: dest, Cache: c})

		result := engine.Sync(ctx, "src", "dst", nil)

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if dest.searchCalls != 0 {
			t.Errorf("cache hit should skip search, got %d calls", dest.searchCalls)
		}
		if len(dest.inserts) != 1 || dest.inserts[0].VideoID != "vid-a" {
			t.Errorf("expected insert of cached vid-a, got %v", dest.inserts)
		}
	})

	t.Run("unresolvable track is skipped with an error", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Unknown", "Nobody"), track("Song A", "Artist A")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Song A": officialResult("vid-a", "Song A", "Artist A"),
			},
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if !result.Success {
			t.Fatalf("resolution misses must not fail the run, got errors %v", result.Errors)
		}
		if result.TracksAdded != 1 {
			t.Errorf("expected 1 added, got %d", result.TracksAdded)
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "No match") {
			t.Errorf("expected a no-match error, got %v", result.Errors)
		}
	})

	t.Run("falls back to first search result when nothing scores", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Obscure Song", "Someone")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Obscure Song": {
					{VideoID: "raw-first", Title: "completely unrelated title", Channel: "whoever"},
				},
			},
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}
		if len(dest.inserts) != 1 || dest.inserts[0].VideoID != "raw-first" {
			t.Errorf("expected fallback to raw-first, got %v", dest.inserts)
		}
	})

	t.Run("abort stops mid-insert and skips deletes", func(t *testing.T) {
		var tracks []models.Track
		searchResults := make(map[string][]models.SearchResult)
		for i := 0; i < 5; i++ {
			title := fmt.Sprintf("Song %d", i)
			tracks = append(tracks, track(title, "Artist"))
			searchResults[title] = officialResult(fmt.Sprintf("vid-%d", i), title, "Artist")
		}

		source := &mockSource{tracks: tracks}
		dest := &mockDest{
			items: []models.PlaylistItem{
				{ItemID: "stale", VideoID: "old", Title: "Old Video", Position: 0},
			},
			searchResults: searchResults,
			insertErrAt:   2,
			insertErr:     fmt.Errorf("%w: SERVICE_UNAVAILABLE", shared.ErrSyncAborted),
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("aborted run must not report success")
		}
		if result.TracksAdded != 1 {
			t.Errorf("expected 1 added before abort, got %d", result.TracksAdded)
		}
		if len(dest.deletes) != 0 {
			t.Errorf("no deletes may run after an abort, got %v", dest.deletes)
		}

		aborted := false
		for _, e := range result.Errors {
			if strings.Contains(e, "ABORT") {
				aborted = true
			}
		}
		if !aborted {
			t.Errorf("expected an ABORT error, got %v", result.Errors)
		}
	})

	t.Run("quota exhaustion stops the run", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A"), track("Song B", "Artist B")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Song A": officialResult("vid-a", "Song A", "Artist A"),
				"Song B": officialResult("vid-b", "Song B", "Artist B"),
			},
			insertErrAt: 1,
			insertErr:   shared.ErrQuotaExceeded,
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("quota-exhausted run must not report success")
		}
		if result.TracksAdded != 0 {
			t.Errorf("expected 0 added, got %d", result.TracksAdded)
		}
		if dest.insertCalls != 1 {
			t.Errorf("expected no further inserts after quota error, got %d calls", dest.insertCalls)
		}
	})

	t.Run("quota exhaustion during search fails without mutating", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{
			track("Song A", "Artist A"),
			track("Song B", "Artist B"),
			track("Song C", "Artist C"),
		}}
		dest := &mockDest{
			items: []models.PlaylistItem{
				{ItemID: "keepme", VideoID: "vid-keep", Title: "Unrelated Video", Position: 0},
			},
			searchErr: fmt.Errorf("%w: dailyLimitExceeded", shared.ErrQuotaExceeded),
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("quota-starved resolution must not report success")
		}
		if dest.searchCalls != 1 {
			t.Errorf("expected no further searches after quota error, got %d calls", dest.searchCalls)
		}
		if dest.insertCalls != 0 || len(dest.deletes) != 0 {
			t.Errorf("expected no mutations, got %d inserts and deletes %v", dest.insertCalls, dest.deletes)
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Quota exhausted") {
			t.Errorf("expected a quota error, got %v", result.Errors)
		}
	})

	t.Run("ordinary failure is fail-soft", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A"), track("Song B", "Artist B")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Song A": officialResult("vid-a", "Song A", "Artist A"),
				"Song B": officialResult("vid-b", "Song B", "Artist B"),
			},
			insertErrAt: 1,
			insertErr:   errors.New("transient flake"),
		}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("run with execution errors must not report success")
		}
		if dest.insertCalls != 2 {
			t.Errorf("expected both inserts attempted, got %d", dest.insertCalls)
		}
	})

	t.Run("source fetch failure", func(t *testing.T) {
		source := &mockSource{err: errors.New("token expired")}
		dest := &mockDest{}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("expected failure")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Spotify") {
			t.Errorf("expected a Spotify fetch error, got %v", result.Errors)
		}
	})

	t.Run("destination fetch failure", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A")}}
		dest := &mockDest{itemsErr: errors.New("boom")}

		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", nil)

		if result.Success {
			t.Fatal("expected failure")
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "YouTube") {
			t.Errorf("expected a YouTube fetch error, got %v", result.Errors)
		}
	})

	t.Run("progress updates are delivered", func(t *testing.T) {
		source := &mockSource{tracks: []models.Track{track("Song A", "Artist A")}}
		dest := &mockDest{
			searchResults: map[string][]models.SearchResult{
				"Song A": officialResult("vid-a", "Song A", "Artist A"),
			},
		}

		progress := make(chan ProgressUpdate, 50)
		result := newTestEngine(t, source, dest).Sync(ctx, "src", "dst", progress)
		close(progress)

		if !result.Success {
			t.Fatalf("expected success, got errors %v", result.Errors)
		}

		seen := make(map[Phase]bool)
		for update := range progress {
			seen[update.Phase] = true
		}
		for _, phase := range []Phase{FetchSource, FetchDest, Resolving, Reconciling, Inserting, Done} {
			if !seen[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})
}
