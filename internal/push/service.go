package push

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/atg247/iGM/internal/store"
)

// WriterFactory builds a logged-in Jopox writer for one user. The service
// owns no credentials; the factory reads them from the user store.
type WriterFactory func(ctx context.Context, userID int) (Writer, error)

// Publisher is the slice of the event publisher the service needs.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// ErrJobInProgress is returned when a user already has a job running.
var ErrJobInProgress = fmt.Errorf("a sync job is already in progress")

// Service coordinates job persistence, execution, and status reporting.
// One job runs at a time per user; a second enqueue while one is active
// is rejected rather than queued, because bulk writes are user-initiated
// and stacking them silently would double-create games.
type Service struct {
	repo      *Repository
	runner    *Runner
	writers   WriterFactory
	publisher Publisher

	historyLimit int

	mu     sync.Mutex
	active map[int]bool // userID -> job in flight

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewService constructs a Service.
func NewService(db *store.Database, writers WriterFactory, publisher Publisher, logger *log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	if logger == nil {
		logger = log.New(log.Writer(), "[push] ", log.LstdFlags)
	}

	repo := NewRepository(db)
	return &Service{
		repo:         repo,
		runner:       NewRunner(repo),
		writers:      writers,
		publisher:    publisher,
		historyLimit: 10,
		active:       make(map[int]bool),
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger,
	}
}

// Start cleans up jobs orphaned by a previous process.
func (s *Service) Start() {
	if err := s.repo.ResetStuckJobs(s.ctx); err != nil {
		s.logger.Printf("failed to reset jobs: %v", err)
	}
}

// Shutdown stops accepting jobs and waits for running ones to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Enqueue creates a job and starts executing it in the background. It
// returns the stored job immediately; callers poll GetStatus for progress.
func (s *Service) Enqueue(ctx context.Context, userID int, jobType JobType, items []WorkItem) (*Job, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("job requires at least one game")
	}
	if jobType != JobTypeCreate && jobType != JobTypeUpdate {
		return nil, fmt.Errorf("unknown job type %s", jobType)
	}

	s.mu.Lock()
	if s.active[userID] {
		s.mu.Unlock()
		return nil, ErrJobInProgress
	}
	s.active[userID] = true
	s.mu.Unlock()

	job, err := s.repo.CreateJob(ctx, userID, jobType, items)
	if err != nil {
		s.release(userID)
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(userID)
		s.executeJob(job, items)
	}()

	return job, nil
}

func (s *Service) release(userID int) {
	s.mu.Lock()
	delete(s.active, userID)
	s.mu.Unlock()
}

func (s *Service) executeJob(job *Job, items []WorkItem) {
	if err := s.repo.MarkRunning(s.ctx, job.JobID); err != nil {
		s.logger.Printf("job %d: %v", job.JobID, err)
	}

	writer, err := s.writers(s.ctx, job.UserID)
	if err != nil {
		s.logger.Printf("job %d: jopox login failed: %v", job.JobID, err)
		_ = s.repo.Finish(s.ctx, job.JobID, JobStatusFailed, err)
		s.publishFinished(job.JobID, job.UserID)
		return
	}

	runErr := s.runner.Run(s.ctx, job, items, writer)

	status := JobStatusCompleted
	if runErr != nil {
		status = JobStatusFailed
		if s.ctx.Err() != nil {
			status = JobStatusCancelled
		}
		s.logger.Printf("job %d: %v", job.JobID, runErr)
	}
	if err := s.repo.Finish(s.ctx, job.JobID, status, runErr); err != nil {
		s.logger.Printf("job %d: %v", job.JobID, err)
	}

	s.publishFinished(job.JobID, job.UserID)
}

func (s *Service) publishFinished(jobID, userID int) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(s.ctx, "sync.job.finished", map[string]interface{}{
		"job_id":  jobID,
		"user_id": userID,
	})
	if err != nil {
		s.logger.Printf("job %d: publish: %v", jobID, err)
	}
}

// GetStatus returns the user's active job, recent history, and the item
// outcomes of the newest job.
func (s *Service) GetStatus(ctx context.Context, userID int) (*StatusSummary, error) {
	active, err := s.repo.GetActiveJob(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecentJobs(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{
		ActiveJob: active,
		History:   history,
	}

	newest := active
	if newest == nil && len(history) > 0 {
		newest = history[0]
	}
	if newest != nil {
		items, err := s.repo.ListItems(ctx, newest.JobID)
		if err != nil {
			return nil, err
		}
		summary.Items = items
	}

	return summary, nil
}

// GetJobStatus returns one job's record and item outcomes.
func (s *Service) GetJobStatus(ctx context.Context, userID, jobID int) (*Job, []*ItemResult, error) {
	job, err := s.repo.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, nil
	}

	items, err := s.repo.ListItems(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	return job, items, nil
}
