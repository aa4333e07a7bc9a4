package services

import (
	"context"

	"github.com/desertthunder/ytsync/internal/models"
)

// SourceProvider supplies the desired playlist order. Implementations
// return entries in playlist order; the engine never reorders them.
type SourceProvider interface {
	// GetPlaylistTracks retrieves the full ordered playlist snapshot.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// Name returns the service name (e.g., "Spotify")
	Name() string
}

// DestinationProvider is the mutable playlist side. Insert addresses a
// 0-based position in the target order; Delete addresses a stable item ID
// so it stays valid regardless of how positions have shifted.
type DestinationProvider interface {
	// GetPlaylistItems retrieves the full ordered playlist snapshot.
	GetPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)

	// Search returns ranked candidates for a track. Scoring and selection
	// are the caller's concern.
	Search(ctx context.Context, title, artist string) ([]models.SearchResult, error)

	// Insert adds a video at the given target position.
	Insert(ctx context.Context, playlistID, videoID, title string, position int) error

	// Delete removes a playlist item by its stable item ID.
	Delete(ctx context.Context, itemID, title string) error

	// Name returns the service name (e.g., "YouTube")
	Name() string
}
