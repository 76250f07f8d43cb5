package push

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atg247/iGM/internal/store"
)

// Repository handles persistence for sync jobs and their items.
type Repository struct {
	db *store.Database
}

// NewRepository constructs a Repository.
func NewRepository(db *store.Database) *Repository {
	return &Repository{db: db}
}

const jobColumns = `job_id, user_id, job_type, status, total_items, processed_items,
	failed_items, error_message, started_at, completed_at, created_at, updated_at`

// CreateJob inserts a job row plus one item row per game, in a single
// transaction so a half-created job can never be claimed.
func (r *Repository) CreateJob(ctx context.Context, userID int, jobType JobType, items []WorkItem) (*Job, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO sync_jobs (user_id, job_type, status, total_items)
		VALUES ($1, $2, 'pending', $3)
		RETURNING `+jobColumns,
		userID, string(jobType), len(items),
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("insert sync job: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sync_job_items (job_id, game_id, game_label)
			VALUES ($1, $2, $3)`,
			job.JobID, item.GameID, item.Label,
		)
		if err != nil {
			return nil, fmt.Errorf("insert job item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return job, nil
}

// MarkRunning moves a job to running and stamps its start time.
func (r *Repository) MarkRunning(ctx context.Context, jobID int) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE sync_jobs
		SET status = 'running',
			started_at = COALESCE(started_at, NOW()),
			updated_at = NOW()
		WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	return nil
}

// RecordItem stores one game's outcome and bumps the job counters.
func (r *Repository) RecordItem(ctx context.Context, jobID int, gameID string, itemErr error) error {
	status := ItemStatusCompleted
	var errText sql.NullString
	if itemErr != nil {
		status = ItemStatusFailed
		errText = sql.NullString{String: itemErr.Error(), Valid: true}
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE sync_job_items
		SET status = $3, error_message = $4, processed_at = NOW()
		WHERE job_id = $1 AND game_id = $2`,
		jobID, gameID, string(status), errText,
	)
	if err != nil {
		return fmt.Errorf("update job item: %w", err)
	}

	failedDelta := 0
	if itemErr != nil {
		failedDelta = 1
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE sync_jobs
		SET processed_items = processed_items + 1,
			failed_items = failed_items + $2,
			updated_at = NOW()
		WHERE job_id = $1`,
		jobID, failedDelta,
	)
	if err != nil {
		return fmt.Errorf("update job counters: %w", err)
	}

	return tx.Commit()
}

// Finish marks a job terminal.
func (r *Repository) Finish(ctx context.Context, jobID int, status JobStatus, jobErr error) error {
	var errText sql.NullString
	if jobErr != nil {
		errText = sql.NullString{String: jobErr.Error(), Valid: true}
	}

	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE sync_jobs
		SET status = $2, error_message = $3, completed_at = NOW(), updated_at = NOW()
		WHERE job_id = $1`,
		jobID, string(status), errText,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// ResetStuckJobs cancels jobs left running by a previous process. Their
// in-memory work queues died with the process, so they cannot resume.
func (r *Repository) ResetStuckJobs(ctx context.Context) error {
	_, err := r.db.DB().ExecContext(ctx, `
		UPDATE sync_jobs
		SET status = 'cancelled',
			error_message = 'Cancelled after service restart',
			completed_at = NOW(),
			updated_at = NOW()
		WHERE status IN ('pending', 'running')
	`)
	if err != nil {
		return fmt.Errorf("reset stuck jobs: %w", err)
	}
	return nil
}

// GetActiveJob returns the user's pending or running job, if any.
func (r *Repository) GetActiveJob(ctx context.Context, userID int) (*Job, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM sync_jobs
		WHERE user_id = $1 AND status IN ('pending', 'running')
		ORDER BY created_at DESC
		LIMIT 1`, userID)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active job: %w", err)
	}
	return job, nil
}

// GetJob returns one job by id, scoped to its owner.
func (r *Repository) GetJob(ctx context.Context, userID, jobID int) (*Job, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM sync_jobs
		WHERE job_id = $1 AND user_id = $2`, jobID, userID)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListRecentJobs returns the user's most recent jobs.
func (r *Repository) ListRecentJobs(ctx context.Context, userID, limit int) ([]*Job, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM sync_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ListItems returns the per-game outcomes for a job.
func (r *Repository) ListItems(ctx context.Context, jobID int) ([]*ItemResult, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT item_id, job_id, game_id, game_label, status, error_message, processed_at
		FROM sync_job_items
		WHERE job_id = $1
		ORDER BY item_id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job items: %w", err)
	}
	defer rows.Close()

	var items []*ItemResult
	for rows.Next() {
		item := &ItemResult{}
		err := rows.Scan(
			&item.ItemID, &item.JobID, &item.GameID, &item.GameLabel,
			&item.Status, &item.ErrorMessage, &item.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*Job, error) {
	job := &Job{}
	err := scanner.Scan(
		&job.JobID,
		&job.UserID,
		&job.JobType,
		&job.Status,
		&job.TotalItems,
		&job.ProcessedItems,
		&job.FailedItems,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
