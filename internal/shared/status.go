package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status is the machine-readable summary of the most recent run, written
// to a well-known file so external automations can poll sync health
// without parsing logs.
type Status struct {
	Status        string  `json:"status"` // "running", "success", or "failed"
	LastSyncTime  string  `json:"last_sync_time"`
	TracksAdded   int     `json:"tracks_added"`
	TracksRemoved int     `json:"tracks_removed"`
	LastError     *string `json:"last_error"`
	SourceCount   int     `json:"spotify_track_count"`
	DestCount     int     `json:"youtube_track_count"`
}

// WriteStatus atomically replaces the status file with the given status,
// stamping the current UTC time.
func WriteStatus(path string, status Status) error {
	status.LastSyncTime = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := AtomicWriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}

	return nil
}

// WriteRunningStatus marks a run as in progress with zeroed counters.
func WriteRunningStatus(path string) error {
	return WriteStatus(path, Status{Status: "running"})
}

// ReadStatus loads the status file. Returns os.ErrNotExist when no run
// has ever completed.
func ReadStatus(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status file: %w", err)
	}

	return &status, nil
}
