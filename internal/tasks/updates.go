package tasks

import (
	"fmt"

	"github.com/desertthunder/ytsync/internal/models"
)

// ProgressUpdate represents a progress event during a reconciliation run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Run phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase enumerates the run state machine. Runs advance Resolving →
// Reconciling → Inserting → Deleting → Done; Aborted is absorbing and
// reachable from the two mutating phases.
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	Resolving
	Reconciling
	Inserting
	Deleting
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case Resolving:
		return "resolving"
	case Reconciling:
		return "reconciling"
	case Inserting:
		return "inserting"
	case Deleting:
		return "deleting"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Fetching source playlist from %s...", name),
	}
}

func fetchDestUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Fetching destination playlist from %s...", name),
	}
}

func resolvingUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolving,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, tr.Artist, tr.Title),
	}
}

func reconcilingUpdate(inserts, deletes int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconciling,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Plan: %d inserts, %d deletes", inserts, deletes),
	}
}

func insertUpdate(step, total int, op models.SyncOp) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Inserting,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] + %s (position %d)", step, total, op.Title, op.Position),
	}
}

func deleteUpdate(step, total int, op models.SyncOp) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Deleting,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s", step, total, op.Title),
	}
}

func doneUpdate(added, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync complete: +%d -%d", added, removed),
	}
}

func abortedUpdate(reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aborted,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync aborted: %s", reason),
	}
}
