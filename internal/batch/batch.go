// Package batch drives bulk ledger operations: items are partitioned into
// chunks, chunks run through a bounded errgroup, progress streams out through
// a channel and an optional callback, and per-item failures are collected
// without aborting the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/journal"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tracker"
)

// Progress is one progress report: items processed so far out of the total.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// ItemError records the failure of a single batch item by input index.
type ItemError struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// Error implements the error interface.
func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e ItemError) Unwrap() error {
	return e.Err
}

// Options configures one batch run. Zero values fall back to the defaults in
// internal/constants.
type Options struct {
	// BatchSize is the chunk size items are partitioned into.
	BatchSize int

	// MaxConcurrency bounds how many chunks run at once.
	MaxConcurrency int

	// Ceiling is the soft time limit for the whole run.
	Ceiling time.Duration

	// Actor is recorded on every created task.
	Actor string

	// JobName labels the run in the job tracker.
	JobName string

	// OnProgress, when set, is invoked after every processed item.
	OnProgress func(Progress)

	// Progress, when set, receives reports after every processed item.
	// Sends never block; a slow consumer just misses intermediate updates.
	Progress chan<- Progress
}

// Result is the outcome of a batch run.
type Result struct {
	// CreatedIDs lists ids of successfully created tasks in input order.
	CreatedIDs []string `json:"created_ids,omitempty"`

	// Processed counts items attempted (successes plus failures).
	Processed int `json:"processed"`

	// Total is the number of items submitted.
	Total int `json:"total"`

	// Failures lists per-item errors; a failed item never aborts the rest.
	Failures []ItemError `json:"failures,omitempty"`

	// JobID is the tracker job for this run, when a tracker is attached.
	JobID string `json:"job_id,omitempty"`
}

// Controller runs batches against a recorder, so every item lands in the
// audit trail like any single mutation.
type Controller struct {
	rec *journal.Recorder
	trk *tracker.Tracker
}

// NewController builds a Controller. The tracker may be nil.
func NewController(rec *journal.Recorder, trk *tracker.Tracker) *Controller {
	return &Controller{rec: rec, trk: trk}
}

// CreateTasks creates all items, chunked and bounded per opts. It returns
// when every chunk has finished. The returned error is ErrBatchCanceled when
// the context or ceiling cut the run short, ErrBatchPartialFailure when some
// items failed, and nil when everything landed.
func (c *Controller) CreateTasks(ctx context.Context, items []ledger.CreateRequest, opts Options) (*Result, error) {
	return c.run(ctx, len(items), opts, "batch create", func(ctx context.Context, i int) (string, error) {
		req := items[i]
		if req.Actor == "" {
			req.Actor = opts.Actor
		}
		task, err := c.rec.Create(ctx, req)
		if err != nil {
			return "", err
		}
		return task.ID, nil
	})
}

// ArchiveTasks archives all ids, chunked and bounded per opts.
func (c *Controller) ArchiveTasks(ctx context.Context, ids []string, opts Options) (*Result, error) {
	// For archives the ids slice in the result holds the archived ids.
	return c.run(ctx, len(ids), opts, "batch archive", func(ctx context.Context, i int) (string, error) {
		if _, err := c.rec.Archive(ctx, ids[i], opts.Actor); err != nil {
			return "", err
		}
		return ids[i], nil
	})
}

// run is the shared chunking loop. apply processes one item and returns the
// id it touched.
func (c *Controller) run(ctx context.Context, total int, opts Options, name string, apply func(ctx context.Context, i int) (string, error)) (*Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = constants.DefaultMaxConcurrency
	}
	ceiling := opts.Ceiling
	if ceiling <= 0 {
		ceiling = constants.DefaultBatchCeiling
	}
	if opts.JobName != "" {
		name = opts.JobName
	}

	result := &Result{Total: total}
	if total == 0 {
		return result, nil
	}

	if c.trk != nil {
		result.JobID = c.trk.Start(name, total)
	}

	runCtx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	var (
		mu        sync.Mutex
		processed int
		idByIndex = make([]string, total)
		failures  []ItemError
	)

	report := func() {
		mu.Lock()
		p := Progress{Processed: processed, Total: total}
		mu.Unlock()

		if c.trk != nil && result.JobID != "" {
			c.trk.Update(result.JobID, p.Processed)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
		if opts.Progress != nil {
			select {
			case opts.Progress <- p:
			default:
			}
		}
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(maxConcurrency)

	for start := 0; start < total; start += batchSize {
		// Cooperative cancellation between chunks: a canceled run submits no
		// further work but lets in-flight chunks finish their current items.
		if err := gctx.Err(); err != nil {
			break
		}

		start := start
		end := start + batchSize
		if end > total {
			end = total
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				id, err := apply(gctx, i)

				mu.Lock()
				processed++
				if err != nil {
					failures = append(failures, ItemError{Index: i, Err: err})
				} else {
					idByIndex[i] = id
				}
				mu.Unlock()

				report()
			}
			return nil
		})
	}

	waitErr := g.Wait()

	mu.Lock()
	result.Processed = processed
	result.Failures = failures
	for _, id := range idByIndex {
		if id != "" {
			result.CreatedIDs = append(result.CreatedIDs, id)
		}
	}
	mu.Unlock()

	switch {
	case waitErr != nil || runCtx.Err() != nil:
		if c.trk != nil && result.JobID != "" {
			c.trk.Fail(result.JobID, "canceled")
		}
		return result, ledgererrors.Wrapf(ledgererrors.ErrBatchCanceled,
			"%d of %d items processed", result.Processed, total)
	case len(result.Failures) > 0:
		if c.trk != nil && result.JobID != "" {
			c.trk.Complete(result.JobID)
		}
		return result, ledgererrors.Wrapf(ledgererrors.ErrBatchPartialFailure,
			"%d of %d items failed", len(result.Failures), total)
	default:
		if c.trk != nil && result.JobID != "" {
			c.trk.Complete(result.JobID)
		}
		return result, nil
	}
}
