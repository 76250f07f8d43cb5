package push

import (
	"context"
	"fmt"
	"time"

	"github.com/atg247/iGM/internal/jopox"
)

// Writer is the slice of the Jopox client the runner needs. jopox.Client
// satisfies it; tests substitute a fake.
type Writer interface {
	AddGame(ctx context.Context, payload jopox.WritePayload) error
	ModifyGame(ctx context.Context, payload jopox.WritePayload, uid string) error
}

// writeDelay spaces out consecutive form posts. The admin UI is a shared
// WebForms app; hammering it gets sessions invalidated.
const writeDelay = 500 * time.Millisecond

// recorder is the slice of the repository the runner needs to store
// per-item outcomes. *Repository satisfies it; tests substitute a fake.
type recorder interface {
	RecordItem(ctx context.Context, jobID int, gameID string, itemErr error) error
}

// Runner executes the items of one job against a Jopox session.
type Runner struct {
	repo recorder
}

// NewRunner constructs a runner.
func NewRunner(repo recorder) *Runner {
	return &Runner{repo: repo}
}

// Run writes every item, recording each outcome separately. An item
// failure is recorded and the run continues: the caller learns the split
// from the job counters. Only a cancelled context aborts the batch.
func (r *Runner) Run(ctx context.Context, job *Job, items []WorkItem, writer Writer) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(writeDelay):
			}
		}

		var writeErr error
		switch job.JobType {
		case JobTypeCreate:
			writeErr = writer.AddGame(ctx, item.Payload)
		case JobTypeUpdate:
			if item.UID == "" {
				writeErr = fmt.Errorf("update item %s has no jopox uid", item.GameID)
			} else {
				writeErr = writer.ModifyGame(ctx, item.Payload, item.UID)
			}
		default:
			writeErr = fmt.Errorf("unsupported job type %s", job.JobType)
		}

		if err := r.repo.RecordItem(ctx, job.JobID, item.GameID, writeErr); err != nil {
			return fmt.Errorf("recording item %s: %w", item.GameID, err)
		}
	}

	return nil
}
