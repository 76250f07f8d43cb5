// Package push runs bulk Jopox write jobs: creating or updating many
// calendar games in one background job, with per-game isolation so a
// single Jopox rejection does not abort the rest of the batch.
package push

import (
	"database/sql"
	"time"

	"github.com/atg247/iGM/internal/jopox"
)

// JobType enumerates the supported sync job variants.
type JobType string

const (
	JobTypeCreate JobType = "create"
	JobTypeUpdate JobType = "update"
)

// JobStatus represents the lifecycle state for a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job models the database representation of a sync job.
type Job struct {
	JobID          int            `json:"job_id"`
	UserID         int            `json:"user_id"`
	JobType        JobType        `json:"job_type"`
	Status         JobStatus      `json:"status"`
	TotalItems     int            `json:"total_items"`
	ProcessedItems int            `json:"processed_items"`
	FailedItems    int            `json:"failed_items"`
	ErrorMessage   sql.NullString `json:"error_message,omitempty"`
	StartedAt      sql.NullTime   `json:"started_at,omitempty"`
	CompletedAt    sql.NullTime   `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ItemStatus is the outcome of one game within a job.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusFailed    ItemStatus = "failed"
)

// ItemResult is one game's recorded outcome.
type ItemResult struct {
	ItemID       int            `json:"item_id"`
	JobID        int            `json:"job_id"`
	GameID       string         `json:"game_id"`
	GameLabel    string         `json:"game_label"`
	Status       ItemStatus     `json:"status"`
	ErrorMessage sql.NullString `json:"error_message,omitempty"`
	ProcessedAt  sql.NullTime   `json:"processed_at,omitempty"`
}

// WorkItem is one game to write to Jopox. UID is set for updates and
// empty for creates.
type WorkItem struct {
	GameID  string
	Label   string
	UID     string
	Payload jopox.WritePayload
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveJob *Job          `json:"active_job,omitempty"`
	History   []*Job        `json:"recent_jobs,omitempty"`
	Items     []*ItemResult `json:"items,omitempty"`
}
