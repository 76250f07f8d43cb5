package push

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(nil, nil, nil, log.New(io.Discard, "", 0))
}

func TestEnqueueRejectsSecondJobForUser(t *testing.T) {
	svc := newTestService()
	svc.mu.Lock()
	svc.active[7] = true
	svc.mu.Unlock()

	_, err := svc.Enqueue(context.Background(), 7, JobTypeCreate, []WorkItem{{GameID: "100"}})

	require.ErrorIs(t, err, ErrJobInProgress)
}

func TestEnqueueRejectsEmptyJob(t *testing.T) {
	_, err := newTestService().Enqueue(context.Background(), 7, JobTypeCreate, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "at least one game")
}

func TestEnqueueRejectsUnknownJobType(t *testing.T) {
	_, err := newTestService().Enqueue(context.Background(), 7, JobType("replay"), []WorkItem{{GameID: "100"}})

	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown job type")
}
