package push

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atg247/iGM/internal/jopox"
)

// fakeWriter records which games were written and fails the ones listed
// in failOn, keyed by the payload's opponent.
type fakeWriter struct {
	added    []string
	modified []string
	failOn   map[string]error
}

func (w *fakeWriter) AddGame(ctx context.Context, payload jopox.WritePayload) error {
	if err := w.failOn[payload.GuestTeam]; err != nil {
		return err
	}
	w.added = append(w.added, payload.GuestTeam)
	return nil
}

func (w *fakeWriter) ModifyGame(ctx context.Context, payload jopox.WritePayload, uid string) error {
	if err := w.failOn[payload.GuestTeam]; err != nil {
		return err
	}
	w.modified = append(w.modified, uid)
	return nil
}

type recordedOutcome struct {
	gameID string
	err    error
}

// fakeRecorder captures outcomes in memory; failAt simulates the store
// rejecting a write.
type fakeRecorder struct {
	outcomes []recordedOutcome
	failAt   string
}

func (r *fakeRecorder) RecordItem(ctx context.Context, jobID int, gameID string, itemErr error) error {
	if gameID == r.failAt {
		return fmt.Errorf("store unavailable")
	}
	r.outcomes = append(r.outcomes, recordedOutcome{gameID: gameID, err: itemErr})
	return nil
}

func createItems(opponents ...string) []WorkItem {
	items := make([]WorkItem, 0, len(opponents))
	for i, opp := range opponents {
		items = append(items, WorkItem{
			GameID:  fmt.Sprintf("10%d", i),
			Payload: jopox.WritePayload{GuestTeam: opp},
		})
	}
	return items
}

func TestRunContinuesPastFailedItem(t *testing.T) {
	writer := &fakeWriter{failOn: map[string]error{
		"HC Lions": fmt.Errorf("jopox rejected the game: Virheellinen päivämäärä"),
	}}
	recorder := &fakeRecorder{}
	job := &Job{JobID: 1, JobType: JobTypeCreate}

	err := NewRunner(recorder).Run(context.Background(), job, createItems("EJK", "HC Lions", "K-Espoo"), writer)

	require.NoError(t, err, "one rejected game must not abort the batch")
	require.Len(t, recorder.outcomes, 3)
	assert.NoError(t, recorder.outcomes[0].err)
	assert.ErrorContains(t, recorder.outcomes[1].err, "Virheellinen päivämäärä")
	assert.NoError(t, recorder.outcomes[2].err)
	assert.Equal(t, []string{"EJK", "K-Espoo"}, writer.added, "siblings of the failed item still run")
}

func TestRunUpdateRequiresUID(t *testing.T) {
	writer := &fakeWriter{}
	recorder := &fakeRecorder{}
	job := &Job{JobID: 1, JobType: JobTypeUpdate}
	items := []WorkItem{
		{GameID: "100", UID: "5501", Payload: jopox.WritePayload{GuestTeam: "EJK"}},
		{GameID: "101", Payload: jopox.WritePayload{GuestTeam: "HC Lions"}},
	}

	err := NewRunner(recorder).Run(context.Background(), job, items, writer)

	require.NoError(t, err)
	require.Len(t, recorder.outcomes, 2)
	assert.NoError(t, recorder.outcomes[0].err)
	assert.ErrorContains(t, recorder.outcomes[1].err, "no jopox uid")
	assert.Equal(t, []string{"5501"}, writer.modified)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder := &fakeRecorder{}
	job := &Job{JobID: 1, JobType: JobTypeCreate}

	err := NewRunner(recorder).Run(ctx, job, createItems("EJK", "HC Lions"), &fakeWriter{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, recorder.outcomes)
}

func TestRunAbortsWhenRecordingFails(t *testing.T) {
	recorder := &fakeRecorder{failAt: "100"}
	job := &Job{JobID: 1, JobType: JobTypeCreate}

	err := NewRunner(recorder).Run(context.Background(), job, createItems("EJK"), &fakeWriter{})

	require.Error(t, err)
	assert.ErrorContains(t, err, "recording item 100")
}
