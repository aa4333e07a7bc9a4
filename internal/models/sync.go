package models

import "fmt"

// Track is a single entry from the source (Spotify) playlist snapshot.
// Immutable once fetched; slice order is source playlist order.
type Track struct {
	Title     string
	Artist    string
	Album     string
	SpotifyID string
}

// PlaylistItem is a single entry from the destination (YouTube) playlist
// snapshot.
//
// ItemID identifies the playlist membership row and survives reordering;
// it is what deletions address. VideoID identifies the piece of media and
// is shared across playlists. Position is only valid at fetch time: any
// insert or delete against the playlist invalidates it.
type PlaylistItem struct {
	ItemID   string
	VideoID  string
	Title    string
	Channel  string
	Position int
}

// SearchResult is one ranked candidate from a destination search.
type SearchResult struct {
	VideoID string
	Title   string
	Channel string
}

// OpKind discriminates the two playlist mutations.
type OpKind int

const (
	OpInsert OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return ""
	}
}

// SyncOp is a single planned playlist mutation. Inserts address a 0-based
// position in the desired target order; deletes address a stable ItemID
// and never a position.
type SyncOp struct {
	Kind     OpKind
	Position int
	VideoID  string
	ItemID   string
	Title    string
}

// SyncResult aggregates the outcome of one reconciliation run.
type SyncResult struct {
	Success       bool     `json:"success"`
	TracksAdded   int      `json:"tracks_added"`
	TracksRemoved int      `json:"tracks_removed"`
	Errors        []string `json:"errors"`
	SourceCount   int      `json:"spotify_track_count"`
	DestCount     int      `json:"youtube_track_count"`
	Duration      float64  `json:"duration_seconds"`
}

// FailedResult creates a pure-failure SyncResult with zero counters and a
// single error message.
func FailedResult(format string, args ...any) *SyncResult {
	return &SyncResult{
		Success: false,
		Errors:  []string{fmt.Sprintf(format, args...)},
	}
}
