package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// RunRepository handles database operations for processing runs
type RunRepository struct {
	db *sql.DB
}

const runColumns = `id, dataset, status, stage, progress_percent, total_points, total_entities,
	start_time, end_time, error_message, created_at, updated_at`

// Create creates a new processing run
func (r *RunRepository) Create(ctx context.Context, run *models.ProcessingRun) error {
	now := time.Now().Unix()
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `INSERT INTO processing_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Dataset,
		run.Status,
		run.Stage,
		run.ProgressPercent,
		run.TotalPoints,
		run.TotalEntities,
		run.StartTime,
		run.EndTime,
		run.ErrorMessage,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create processing run: %w", err)
	}
	return nil
}

// GetByID retrieves a processing run by ID
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.ProcessingRun, error) {
	query := `SELECT ` + runColumns + ` FROM processing_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("processing run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processing run: %w", err)
	}
	return run, nil
}

// List retrieves processing runs with optional filters, newest first
func (r *RunRepository) List(ctx context.Context, filter models.RunFilter) ([]models.ProcessingRun, error) {
	query := `SELECT ` + runColumns + ` FROM processing_runs WHERE 1=1`

	args := []any{}
	if filter.Dataset != "" {
		query += " AND dataset = ?"
		args = append(args, filter.Dataset)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ProcessingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processing run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// UpdateProgress records the stage a run is in and its progress
func (r *RunRepository) UpdateProgress(ctx context.Context, id, stage string, progressPercent int) error {
	query := `
		UPDATE processing_runs
		SET stage = ?, progress_percent = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, stage, progressPercent, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	return nil
}

// MarkAsRunning marks a run as running
func (r *RunRepository) MarkAsRunning(ctx context.Context, id string) error {
	now := time.Now().Unix()
	query := `
		UPDATE processing_runs
		SET status = ?, start_time = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusRunning, now, now, id); err != nil {
		return fmt.Errorf("failed to mark run as running: %w", err)
	}
	return nil
}

// MarkAsCompleted marks a run as completed
func (r *RunRepository) MarkAsCompleted(ctx context.Context, id string) error {
	now := time.Now().Unix()
	query := `
		UPDATE processing_runs
		SET status = ?, end_time = ?, progress_percent = 100, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusCompleted, now, now, id); err != nil {
		return fmt.Errorf("failed to mark run as completed: %w", err)
	}
	return nil
}

// MarkAsFailed marks a run as failed with an error message
func (r *RunRepository) MarkAsFailed(ctx context.Context, id, errorMessage string) error {
	now := time.Now().Unix()
	query := `
		UPDATE processing_runs
		SET status = ?, end_time = ?, error_message = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusFailed, now, errorMessage, now, id); err != nil {
		return fmt.Errorf("failed to mark run as failed: %w", err)
	}
	return nil
}

func scanRun(row rowScanner) (*models.ProcessingRun, error) {
	var run models.ProcessingRun
	err := row.Scan(
		&run.ID,
		&run.Dataset,
		&run.Status,
		&run.Stage,
		&run.ProgressPercent,
		&run.TotalPoints,
		&run.TotalEntities,
		&run.StartTime,
		&run.EndTime,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
