package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Trigger values recorded with each run.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerAPI       = "api"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 500
)

// Run is one recorded task execution.
type Run struct {
	ID         int64          `json:"id"`
	Operation  string         `json:"operation"`
	Trigger    string         `json:"trigger"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Files      []string       `json:"files,omitempty"`
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordRun inserts run and returns its ID. run.ID is updated as well.
func (d *Database) RecordRun(ctx context.Context, run *Run) (id int64, err error) {
	start := time.Now()
	defer func() { recordQuery("record_run", start, err) }()

	if run.Operation == "" {
		return 0, fmt.Errorf("run has no operation")
	}
	trigger := run.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	counts := run.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode counts: %w", err)
	}
	files := run.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return 0, fmt.Errorf("failed to encode files: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO runs (operation, triggered_by, started_at, finished_at, success, message, counts, files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Operation, trigger, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Success, run.Message, string(countsJSON), string(filesJSON))
	if err != nil {
		return 0, err
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	run.Trigger = trigger
	return id, nil
}

// RecentRuns returns up to limit runs, newest first. A limit of zero or less
// uses the default.
func (d *Database) RecentRuns(ctx context.Context, limit int) (runs []Run, err error) {
	start := time.Now()
	defer func() { recordQuery("recent_runs", start, err) }()

	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, operation, triggered_by, started_at, finished_at, success, message, counts, files
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs = []Run{}
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run of operation, or nil if it has never
// run.
func (d *Database) LastRun(ctx context.Context, operation string) (run *Run, err error) {
	start := time.Now()
	defer func() { recordQuery("last_run", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, operation, triggered_by, started_at, finished_at, success, message, counts, files
		FROM runs
		WHERE operation = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, operation)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	r, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// PruneRuns deletes all but the newest keep runs and returns the number
// removed.
func (d *Database) PruneRuns(ctx context.Context, keep int) (removed int64, err error) {
	start := time.Now()
	defer func() { recordQuery("prune_runs", start, err) }()

	if keep < 0 {
		keep = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                   Run
		startedMs, finishedMs int64
		countsJSON, filesJSON string
	)
	if err := row.Scan(&run.ID, &run.Operation, &run.Trigger, &startedMs, &finishedMs,
		&run.Success, &run.Message, &countsJSON, &filesJSON); err != nil {
		return Run{}, err
	}
	run.StartedAt = time.UnixMilli(startedMs)
	run.FinishedAt = time.UnixMilli(finishedMs)

	if countsJSON != "" {
		if err := json.Unmarshal([]byte(countsJSON), &run.Counts); err != nil {
			return Run{}, fmt.Errorf("run %d: invalid counts: %w", run.ID, err)
		}
	}
	if filesJSON != "" {
		if err := json.Unmarshal([]byte(filesJSON), &run.Files); err != nil {
			return Run{}, fmt.Errorf("run %d: invalid files: %w", run.ID, err)
		}
	}
	return run, nil
}
