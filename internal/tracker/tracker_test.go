package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/clock"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func TestTrackerLifecycle(t *testing.T) {
	t.Parallel()

	clk := clock.NewFixed(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	tr := New(clk)

	id := tr.Start("batch import", 100)

	job, err := tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, job.Phase)
	assert.Equal(t, 100, job.Total)
	assert.Zero(t, job.Processed)

	clk.Advance(time.Second)
	tr.Update(id, 40)
	job, err = tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 40, job.Processed)
	assert.True(t, job.UpdatedAt.After(job.StartedAt))

	tr.Complete(id)
	job, err = tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, job.Phase)
}

func TestTrackerFail(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	id := tr.Start("batch import", 10)
	tr.Fail(id, "store unavailable")

	job, err := tr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, job.Phase)
	assert.Equal(t, "store unavailable", job.Error)
}

func TestTrackerUnknownJob(t *testing.T) {
	t.Parallel()

	tr := New(nil)
	_, err := tr.Get("missing")
	require.ErrorIs(t, err, ledgererrors.ErrJobNotFound)

	// Progress updates for unknown jobs are silently dropped.
	tr.Update("missing", 5)
	tr.Complete("missing")
}

func TestTrackerListOrder(t *testing.T) {
	t.Parallel()

	clk := clock.NewFixed(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	tr := New(clk)

	first := tr.Start("first", 1)
	clk.Advance(time.Minute)
	second := tr.Start("second", 1)

	jobs := tr.List()
	require.Len(t, jobs, 2)
	assert.Equal(t, first, jobs[0].ID)
	assert.Equal(t, second, jobs[1].ID)

	// List returns copies.
	jobs[0].Phase = PhaseFailed
	job, err := tr.Get(first)
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, job.Phase)
}
