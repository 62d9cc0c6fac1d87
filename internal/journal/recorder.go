// Package journal provides the operation recorder sitting between callers and
// the task store. Every mutation that goes through the recorder produces an
// OperationRecord with before/after snapshots, feeding three consumers: the
// bounded undo history, the append-only audit trail, and registered
// subscribers.
package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
)

// Subscriber receives committed operation records. Implementations get plain
// data snapshots and must not mutate them; the engine has no other knowledge
// of what subscribers do.
type Subscriber interface {
	OperationCommitted(record *domain.OperationRecord)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(record *domain.OperationRecord)

// OperationCommitted implements Subscriber.
func (f SubscriberFunc) OperationCommitted(record *domain.OperationRecord) {
	f(record)
}

// Recorder wraps a ledger.Store so every mutation is captured as a reversible
// OperationRecord. Mutations are serialized: capture, history push, audit
// append, and subscriber notification happen atomically with respect to each
// other.
type Recorder struct {
	store *ledger.Store
	depth int

	mu          sync.Mutex
	history     []*domain.OperationRecord // oldest first
	auditPath   string
	subscribers []Subscriber
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithDepth overrides the number of records retained for undo.
func WithDepth(depth int) Option {
	return func(r *Recorder) { r.depth = depth }
}

// NewRecorder builds a Recorder over the given store. The audit trail lives
// at <store home>/audit.jsonl.
func NewRecorder(store *ledger.Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:     store,
		depth:     constants.DefaultUndoDepth,
		auditPath: filepath.Join(store.Home(), constants.AuditFileName),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.depth <= 0 {
		r.depth = constants.DefaultUndoDepth
	}
	r.history = r.replayAudit()
	return r
}

// replayAudit rebuilds the bounded undo history from the audit trail, so a
// fresh process can undo operations committed by earlier ones. Regular
// operations push onto the history; undo entries pop the record they
// reversed, leaving exactly what a long-lived Recorder would hold. A missing
// trail means an empty history; a broken one is reported and skipped.
func (r *Recorder) replayAudit() []*domain.OperationRecord {
	records, err := r.ReadAudit()
	if err != nil {
		log.Warn().Err(err).Msg("audit trail unreadable, undo history starts empty")
		return nil
	}

	var history []*domain.OperationRecord
	for _, record := range records {
		if record.Type == constants.OpUndo {
			if len(history) > 0 {
				history = history[:len(history)-1]
			}
			continue
		}
		history = append(history, record)
	}
	if len(history) > r.depth {
		history = history[len(history)-r.depth:]
	}
	return history
}

// Store exposes the underlying store for read-only collaborators.
func (r *Recorder) Store() *ledger.Store {
	return r.store
}

// Subscribe registers a subscriber for all future committed operations.
func (r *Recorder) Subscribe(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, sub)
}

// Create creates a task through the store and records the operation.
func (r *Recorder) Create(ctx context.Context, req ledger.CreateRequest) (*domain.Task, error) {
	task, err := r.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	r.commit(&domain.OperationRecord{
		TaskID:      task.ID,
		After:       task.Clone(),
		Type:        constants.OpCreate,
		Actor:       req.Actor,
		Description: fmt.Sprintf("create %q", task.Title),
		RecordedAt:  r.store.Clock().Now().UTC(),
	})
	return task, nil
}

// Update applies a partial update through the store and records the operation.
func (r *Recorder) Update(ctx context.Context, id string, update ledger.TaskUpdate) (*domain.Task, error) {
	return r.update(ctx, id, update, constants.OpUpdate, "")
}

// ApplyResolution applies a conflict-resolution update through the store and
// records it as a resolve_conflict operation, so resolutions are undoable and
// audited like any other mutation.
func (r *Recorder) ApplyResolution(ctx context.Context, id string, update ledger.TaskUpdate, description string) (*domain.Task, error) {
	return r.update(ctx, id, update, constants.OpResolve, description)
}

// update is the shared path for Update and ApplyResolution.
func (r *Recorder) update(ctx context.Context, id string, update ledger.TaskUpdate, opType constants.OperationType, description string) (*domain.Task, error) {
	before, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := r.store.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("update %q", after.Title)
	}
	r.commit(&domain.OperationRecord{
		TaskID:      id,
		Before:      before,
		After:       after.Clone(),
		Type:        opType,
		Actor:       update.Actor,
		Description: description,
		RecordedAt:  r.store.Clock().Now().UTC(),
	})
	return after, nil
}

// Archive soft-deletes a task through the store and records the operation.
func (r *Recorder) Archive(ctx context.Context, id, actor string) (*domain.Task, error) {
	before, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := r.store.Archive(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	r.commit(&domain.OperationRecord{
		TaskID:      id,
		Before:      before,
		After:       after.Clone(),
		Type:        constants.OpArchive,
		Actor:       actor,
		Description: fmt.Sprintf("archive %q", after.Title),
		RecordedAt:  r.store.Clock().Now().UTC(),
	})
	return after, nil
}

// Delete permanently removes a task through the store and records the
// operation with the final snapshot as Before, so undo can restore it.
func (r *Recorder) Delete(ctx context.Context, id, actor string) (*domain.Task, error) {
	deleted, err := r.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.commit(&domain.OperationRecord{
		TaskID:      id,
		Before:      deleted.Clone(),
		Type:        constants.OpDelete,
		Actor:       actor,
		Description: fmt.Sprintf("delete %q", deleted.Title),
		RecordedAt:  r.store.Clock().Now().UTC(),
	})
	return deleted, nil
}

// Comment appends a comment through the store and records the operation.
func (r *Recorder) Comment(ctx context.Context, id string, req ledger.CommentRequest) (*domain.Task, error) {
	before, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := r.store.AddComment(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.commit(&domain.OperationRecord{
		TaskID:      id,
		Before:      before,
		After:       after.Clone(),
		Type:        constants.OpComment,
		Actor:       req.Author,
		Description: fmt.Sprintf("comment on %q", after.Title),
		RecordedAt:  r.store.Clock().Now().UTC(),
	})
	return after, nil
}

// History returns the retained operation records, newest first.
func (r *Recorder) History() []*domain.OperationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.OperationRecord, 0, len(r.history))
	for i := len(r.history) - 1; i >= 0; i-- {
		out = append(out, r.history[i])
	}
	return out
}

// Len returns the number of retained records.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// commit pushes the record onto the bounded history, appends it to the audit
// trail, and notifies subscribers. Audit failures are not allowed to roll back
// the committed store mutation; the record stays in the history regardless.
func (r *Recorder) commit(record *domain.OperationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, record)
	if len(r.history) > r.depth {
		// Evict oldest. The audit trail keeps the full history.
		r.history = r.history[len(r.history)-r.depth:]
	}

	if err := r.appendAudit(record); err != nil {
		log.Warn().Err(err).Str("task_id", record.TaskID).Msg("audit append failed")
	}

	for _, sub := range r.subscribers {
		sub.OperationCommitted(record)
	}
}

// dropLatest removes the newest history record. Used by Undo after the
// restore succeeds.
func (r *Recorder) dropLatest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) > 0 {
		r.history = r.history[:len(r.history)-1]
	}
}

// latest returns the newest history record without removing it.
func (r *Recorder) latest() (*domain.OperationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return nil, ledgererrors.ErrNothingToUndo
	}
	return r.history[len(r.history)-1], nil
}
