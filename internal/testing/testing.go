// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/desertthunder/ytsync/internal/models"
)

// MockSource is a test double for [services.SourceProvider]
type MockSource struct {
	Tracks []models.Track
	Err    error
}

func (m *MockSource) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

func (m *MockSource) Name() string { return "mock-source" }

// MockDest is a test double for [services.DestinationProvider]
type MockDest struct {
	Items   []models.PlaylistItem
	Results map[string][]models.SearchResult
	Err     error

	Inserted []string
	Deleted  []string
}

func (m *MockDest) GetPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items, nil
}

func (m *MockDest) Search(ctx context.Context, title, artist string) ([]models.SearchResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[title], nil
}

func (m *MockDest) Insert(ctx context.Context, playlistID, videoID, title string, position int) error {
	if m.Err != nil {
		return m.Err
	}
	m.Inserted = append(m.Inserted, videoID)
	return nil
}

func (m *MockDest) Delete(ctx context.Context, itemID, title string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, itemID)
	return nil
}

func (m *MockDest) Name() string { return "mock-dest" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
