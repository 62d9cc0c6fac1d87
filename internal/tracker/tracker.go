// Package tracker is a minimal in-memory job tracker for operations that
// outlive a single request, such as batch imports. The engine reports phase
// and progress into it; the tracker knows nothing about its callers.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskledger/taskledger/internal/clock"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Phase is the lifecycle state of a tracked job.
type Phase string

const (
	// PhaseRunning marks a job in progress.
	PhaseRunning Phase = "running"

	// PhaseCompleted marks a job that finished successfully.
	PhaseCompleted Phase = "completed"

	// PhaseFailed marks a job that stopped with an error.
	PhaseFailed Phase = "failed"
)

// Job is a snapshot of one tracked operation.
type Job struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phase     Phase     `json:"phase"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker holds job snapshots behind a mutex.
type Tracker struct {
	clk clock.Clock

	mu   sync.Mutex
	jobs map[string]*Job
}

// New builds a Tracker using the given clock.
func New(clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Tracker{clk: clk, jobs: make(map[string]*Job)}
}

// Start registers a new running job and returns its id.
func (t *Tracker) Start(name string, total int) string {
	now := t.clk.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Name:      name,
		Phase:     PhaseRunning,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[job.ID] = job
	return job.ID
}

// Update records progress for a running job. Unknown ids are ignored so
// progress reporting can never fail the operation it describes.
func (t *Tracker) Update(id string, processed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	job.Processed = processed
	job.UpdatedAt = t.clk.Now().UTC()
}

// Complete marks a job finished.
func (t *Tracker) Complete(id string) {
	t.finish(id, PhaseCompleted, "")
}

// Fail marks a job failed with a reason.
func (t *Tracker) Fail(id string, reason string) {
	t.finish(id, PhaseFailed, reason)
}

func (t *Tracker) finish(id string, phase Phase, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	job.Phase = phase
	job.Error = reason
	job.UpdatedAt = t.clk.Now().UTC()
}

// Get returns a copy of the job.
func (t *Tracker) Get(id string) (*Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrJobNotFound, "%q", id)
	}
	copied := *job
	return &copied, nil
}

// List returns copies of all jobs, oldest first.
func (t *Tracker) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		copied := *job
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
