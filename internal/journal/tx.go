package journal

import (
	"context"
	"strings"
	"sync"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
)

// Tx is a buffered transaction. Staged operations validate against a private
// working copy of the ledger and never touch the live store until Commit.
// A Tx is not safe for concurrent use by multiple goroutines beyond its own
// locking; it is a short-lived staging buffer, not a long-lived handle.
type Tx struct {
	rec *Recorder

	mu      sync.Mutex
	closed  bool
	view    map[string]*domain.Task // staged state; nil value marks a staged delete
	ops     []stagedOp
	created []string
}

// stagedOp is one buffered mutation, applied in order at Commit.
type stagedOp struct {
	kind   constants.OperationType
	id     string
	create ledger.CreateRequest
	update ledger.TaskUpdate
	actor  string
}

// TxResult reports what a committed transaction did.
type TxResult struct {
	// CreatedIDs lists ids of tasks the transaction created, in staging order.
	CreatedIDs []string `json:"created_ids,omitempty"`

	// Applied is the number of operations committed.
	Applied int `json:"applied"`
}

// Begin opens a transaction over the recorder's store. The transaction seeds
// its working copy from the current ledger state; later live mutations are
// not visible inside it.
func (r *Recorder) Begin(ctx context.Context) (*Tx, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	view := make(map[string]*domain.Task, len(all))
	for _, task := range all {
		view[task.ID] = task
	}
	return &Tx{rec: r, view: view}, nil
}

// Create stages a task creation and returns the id the task will have after
// Commit, so later staged operations can depend on it.
func (tx *Tx) Create(req ledger.CreateRequest) (string, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return "", ledgererrors.ErrTransactionClosed
	}

	id := req.ID
	if id == "" {
		id = domain.NewTaskID()
	} else {
		if err := domain.ValidateID(id); err != nil {
			return "", err
		}
		if existing, ok := tx.view[id]; ok && existing != nil {
			return "", ledgererrors.Wrapf(ledgererrors.ErrTaskExists, "%q", id)
		}
	}

	task := &domain.Task{
		ID:           id,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Tags:         req.Tags,
		Category:     req.Category,
		Assignee:     req.Assignee,
		DueDate:      req.DueDate,
		Dependencies: req.Dependencies,
		Subtasks:     req.Subtasks,
		Checklist:    req.Checklist,
	}
	if task.Status == "" {
		task.Status = constants.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = constants.TaskPriorityMedium
	}
	// Detach from the request's slices; the caller keeps ownership of them.
	task = task.Clone()
	if err := task.Validate(); err != nil {
		return "", err
	}
	if err := tx.validateDeps(id, task.Dependencies); err != nil {
		return "", err
	}

	tx.view[id] = task
	req.ID = id
	tx.ops = append(tx.ops, stagedOp{kind: constants.OpCreate, id: id, create: req})
	tx.created = append(tx.created, id)
	return id, nil
}

// Update stages a partial update against the working copy.
func (tx *Tx) Update(id string, update ledger.TaskUpdate) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return ledgererrors.ErrTransactionClosed
	}
	current, err := tx.get(id)
	if err != nil {
		return err
	}
	if update.DueDate != nil && update.ClearDueDate {
		return ledgererrors.Wrap(ledgererrors.ErrInvalidArgument,
			"cannot set and clear due date in the same update")
	}

	next := current.Clone()
	update.ApplyTo(next)
	if err := next.Validate(); err != nil {
		return err
	}
	if update.Dependencies != nil {
		if err := tx.validateDeps(id, next.Dependencies); err != nil {
			return err
		}
	}

	tx.view[id] = next
	tx.ops = append(tx.ops, stagedOp{kind: constants.OpUpdate, id: id, update: update})
	return nil
}

// Archive stages a soft delete.
func (tx *Tx) Archive(id, actor string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return ledgererrors.ErrTransactionClosed
	}
	current, err := tx.get(id)
	if err != nil {
		return err
	}
	if current.Archived {
		return ledgererrors.Wrapf(ledgererrors.ErrArchived, "%q", id)
	}

	next := current.Clone()
	next.Archived = true
	tx.view[id] = next
	tx.ops = append(tx.ops, stagedOp{kind: constants.OpArchive, id: id, actor: actor})
	return nil
}

// Delete stages a permanent removal, checking dependents against the working
// copy so a transaction can delete a task together with its dependents.
func (tx *Tx) Delete(id string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return ledgererrors.ErrTransactionClosed
	}
	if _, err := tx.get(id); err != nil {
		return err
	}

	var blockers []string
	for otherID, other := range tx.view {
		if other == nil || otherID == id || other.Archived {
			continue
		}
		if other.HasDependency(id) {
			blockers = append(blockers, otherID)
		}
	}
	if len(blockers) > 0 {
		return ledgererrors.Wrapf(ledgererrors.ErrDependencyConflict,
			"task %q is required by %s", id, strings.Join(blockers, ", "))
	}

	tx.view[id] = nil
	tx.ops = append(tx.ops, stagedOp{kind: constants.OpDelete, id: id})
	return nil
}

// Commit applies the staged operations in order through the recorder as one
// all-or-nothing batch. Staging already validated every operation against the
// working copy, so live application only fails on I/O errors; in that case
// already-applied operations are compensated (restored or removed directly)
// and their history entries dropped before the error is returned. The
// transaction is closed whether or not the commit succeeds.
func (tx *Tx) Commit(ctx context.Context) (*TxResult, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return nil, ledgererrors.ErrTransactionClosed
	}
	tx.closed = true

	type applied struct {
		op     stagedOp
		before *domain.Task
	}
	var done []applied

	compensate := func() {
		store := tx.rec.store
		for i := len(done) - 1; i >= 0; i-- {
			a := done[i]
			switch {
			case a.before == nil:
				_ = store.Remove(ctx, a.op.id)
			default:
				_ = store.Restore(ctx, a.before)
			}
			tx.rec.dropLatest()
		}
	}

	for _, op := range tx.ops {
		var (
			before *domain.Task
			err    error
		)
		switch op.kind {
		case constants.OpCreate:
			_, err = tx.rec.Create(ctx, op.create)
		case constants.OpUpdate:
			before, err = tx.rec.store.Get(ctx, op.id)
			if err == nil {
				_, err = tx.rec.Update(ctx, op.id, op.update)
			}
		case constants.OpArchive:
			before, err = tx.rec.store.Get(ctx, op.id)
			if err == nil {
				_, err = tx.rec.Archive(ctx, op.id, op.actor)
			}
		case constants.OpDelete:
			before, err = tx.rec.store.Get(ctx, op.id)
			if err == nil {
				_, err = tx.rec.Delete(ctx, op.id, op.actor)
			}
		default:
			err = ledgererrors.Wrapf(ledgererrors.ErrInvalidArgument, "staged op %q", op.kind)
		}
		if err != nil {
			compensate()
			return nil, ledgererrors.Wrapf(err, "transaction aborted at %s %q", op.kind, op.id)
		}
		done = append(done, applied{op: op, before: before})
	}

	return &TxResult{CreatedIDs: tx.created, Applied: len(tx.ops)}, nil
}

// Rollback discards the staged operations and closes the transaction.
// Rolling back an already-closed transaction fails with ErrTransactionClosed.
func (tx *Tx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.closed {
		return ledgererrors.ErrTransactionClosed
	}
	tx.closed = true
	tx.ops = nil
	tx.view = nil
	tx.created = nil
	return nil
}

// get returns the staged task for id, failing for malformed ids, unknown ids,
// and staged deletes.
func (tx *Tx) get(id string) (*domain.Task, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	task, ok := tx.view[id]
	if !ok || task == nil {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}
	return task, nil
}

// validateDeps mirrors the store's dependency checks against the working copy.
func (tx *Tx) validateDeps(taskID string, deps []string) error {
	seen := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		if err := domain.ValidateID(dep); err != nil {
			return err
		}
		if dep == taskID {
			return ledgererrors.Wrapf(ledgererrors.ErrDependencyCycle,
				"task %q cannot depend on itself", taskID)
		}
		if _, dup := seen[dep]; dup {
			return ledgererrors.Wrapf(ledgererrors.ErrInvalidArgument,
				"duplicate dependency %q", dep)
		}
		seen[dep] = struct{}{}
		if task, ok := tx.view[dep]; !ok || task == nil {
			return ledgererrors.Wrapf(ledgererrors.ErrDependencyUnknown, "%q", dep)
		}
	}

	visited := make(map[string]struct{})
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == taskID {
			return true
		}
		if _, doneWalk := visited[id]; doneWalk {
			return false
		}
		visited[id] = struct{}{}
		task, ok := tx.view[id]
		if !ok || task == nil {
			return false
		}
		for _, next := range task.Dependencies {
			if walk(next) {
				return true
			}
		}
		return false
	}
	for _, dep := range deps {
		if walk(dep) {
			return ledgererrors.Wrapf(ledgererrors.ErrDependencyCycle,
				"dependency %q cycles back to task %q", dep, taskID)
		}
	}
	return nil
}
