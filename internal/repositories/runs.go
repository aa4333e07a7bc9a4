package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

// RunRepository implements models.Repository[*models.SyncRun] for run history.
//
// Error lists are stored as JSON arrays in a TEXT column so a run record
// round-trips without a join table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new [models.SyncRun] into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := run.Result()
	errs, err := marshalErrors(result.Errors)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_runs (id, sequence, success, tracks_added, tracks_removed, errors, source_count, dest_count, duration_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		result.Success,
		result.TracksAdded,
		result.TracksRemoved,
		errs,
		result.SourceCount,
		result.DestCount,
		result.Duration,
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT id, sequence, success, tracks_added, tracks_removed, errors, source_count, dest_count, duration_seconds, created_at, updated_at
		FROM sync_runs
		WHERE id = ?
	`

	row := r.db.QueryRow(query, id)
	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// Update modifies an existing run record
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	result := run.Result()
	errs, err := marshalErrors(result.Errors)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_runs
		SET success = ?, tracks_added = ?, tracks_removed = ?, errors = ?, source_count = ?, dest_count = ?, duration_seconds = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := r.db.Exec(query,
		result.Success,
		result.TracksAdded,
		result.TracksRemoved,
		errs,
		result.SourceCount,
		result.DestCount,
		result.Duration,
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found: %s", run.ID())
	}

	return nil
}

// Delete removes a run record by ID
func (r *RunRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM sync_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "success" (bool), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `
		SELECT id, sequence, success, tracks_added, tracks_removed, errors, source_count, dest_count, duration_seconds, created_at, updated_at
		FROM sync_runs
		WHERE 1 = 1
	`

	args := []any{}

	if success, ok := criteria["success"].(bool); ok {
		query += " AND success = ?"
		args = append(args, success)
	}

	query += " ORDER BY created_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// ListRecent retrieves the most recent runs up to limit, newest first.
func (r *RunRepository) ListRecent(limit int) ([]*models.SyncRun, error) {
	return r.List(map[string]any{"limit": limit})
}

func marshalErrors(errs []string) (string, error) {
	if errs == nil {
		errs = []string{}
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal run errors: %w", err)
	}
	return string(data), nil
}

// scanRun scans a sync_runs row via the given Scan function, shared
// between QueryRow and Query paths.
func scanRun(scan func(dest ...any) error) (*models.SyncRun, error) {
	var (
		id        string
		sequence  int
		success   bool
		added     int
		removed   int
		errsJSON  string
		srcCount  int
		dstCount  int
		duration  float64
		createdAt time.Time
		updatedAt time.Time
	)

	err := scan(&id, &sequence, &success, &added, &removed, &errsJSON, &srcCount, &dstCount, &duration, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	var errs []string
	if err := json.Unmarshal([]byte(errsJSON), &errs); err != nil {
		return nil, fmt.Errorf("failed to parse run errors: %w", err)
	}

	result := models.SyncResult{
		Success:       success,
		TracksAdded:   added,
		TracksRemoved: removed,
		Errors:        errs,
		SourceCount:   srcCount,
		DestCount:     dstCount,
		Duration:      duration,
	}

	run := models.NewSyncRun(sequence, result)
	run.SetID(id)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	return run, nil
}
