package models

import (
	"fmt"
	"time"
)

// SyncRun is the persisted record of a single reconciliation run.
type SyncRun struct {
	id        string
	sequence  int
	result    SyncResult
	createdAt time.Time
	updatedAt time.Time
}

// NewSyncRun wraps a SyncResult for persistence. The ID is assigned by the
// repository at insert time.
func NewSyncRun(sequence int, result SyncResult) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		result:    result,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string           { return r.id }
func (r *SyncRun) CreatedAt() time.Time { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time { return r.updatedAt }

// Result returns the run outcome this record wraps.
func (r *SyncRun) Result() SyncResult { return r.result }

// Sequence returns the human-readable run number.
func (r *SyncRun) Sequence() int { return r.sequence }

func (r *SyncRun) SetID(id string)          { r.id = id }
func (r *SyncRun) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *SyncRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *SyncRun) SetSequence(sequence int) { r.sequence = sequence }

// Validate checks if the run's data is valid.
func (r *SyncRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("sync run missing ID")
	}
	if r.result.TracksAdded < 0 || r.result.TracksRemoved < 0 {
		return fmt.Errorf("sync run has negative counters")
	}
	return nil
}
