package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/ctxutil"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Create validates the request, assigns identity and timestamps, persists the
// task, and returns a clone of the stored task. Version starts at 1 with a
// single "create" change-log entry.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}

	id := req.ID
	if id == "" {
		id = domain.NewTaskID()
	} else {
		if err := domain.ValidateID(id); err != nil {
			return nil, err
		}
		if _, exists := s.tasks[id]; exists {
			return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskExists, "%q", id)
		}
	}

	now := s.clk.Now().UTC()
	task := &domain.Task{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Tags:          req.Tags,
		Category:      req.Category,
		Assignee:      req.Assignee,
		DueDate:       req.DueDate,
		Dependencies:  req.Dependencies,
		Subtasks:      req.Subtasks,
		Checklist:     req.Checklist,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
		SchemaVersion: constants.TaskSchemaVersion,
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
		return nil, err
	}
	if err := s.validateDependencies(task.ID, task.Dependencies); err != nil {
		return nil, err
	}

	task.ChangeLog = []domain.ChangeLogEntry{{
		Timestamp: now,
		Actor:     req.Actor,
		Action:    constants.OpCreate,
	}}

	if err := s.persist(task); err != nil {
		return nil, err
	}
	s.insert(task)
	return task.Clone(), nil
}

// Update applies a partial update, bumps the version, and appends a
// change-log entry recording per-field before/after diffs. Archived tasks
// stay updatable; they remain addressable after archiving.
func (s *Store) Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	if update.DueDate != nil && update.ClearDueDate {
		return nil, ledgererrors.Wrap(ledgererrors.ErrInvalidArgument,
			"cannot set and clear due date in the same update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	current, ok := s.tasks[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}

	next := current.Clone()
	update.ApplyTo(next)

	if err := next.Validate(); err != nil {
		return nil, err
	}
	if update.Dependencies != nil {
		if err := s.validateDependencies(id, next.Dependencies); err != nil {
			return nil, err
		}
	}

	now := s.clk.Now().UTC()
	next.UpdatedAt = now
	next.Version = current.Version + 1

	diffs := (&domain.OperationRecord{Before: current, After: next}).Diff()
	next.ChangeLog = append(next.ChangeLog, domain.ChangeLogEntry{
		Timestamp:  now,
		Actor:      update.Actor,
		Action:     constants.OpUpdate,
		FieldDiffs: diffs,
	})

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.replace(next)
	return next.Clone(), nil
}

// Archive soft-deletes a task: it stays addressable but drops out of default
// listings and dependency-conflict checks. Archiving an archived task fails
// with ErrArchived.
func (s *Store) Archive(ctx context.Context, id, actor string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	current, ok := s.tasks[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}
	if current.Archived {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrArchived, "%q", id)
	}

	now := s.clk.Now().UTC()
	next := current.Clone()
	next.Archived = true
	next.ArchivedAt = &now
	next.UpdatedAt = now
	next.Version = current.Version + 1
	next.ChangeLog = append(next.ChangeLog, domain.ChangeLogEntry{
		Timestamp: now,
		Actor:     actor,
		Action:    constants.OpArchive,
		FieldDiffs: map[string]domain.FieldDiff{
			"archived": {From: "false", To: "true"},
		},
	})

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.replace(next)
	return next.Clone(), nil
}

// Delete permanently removes a task. It fails with ErrDependencyConflict when
// any non-archived task still depends on it, naming the blockers.
func (s *Store) Delete(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	current, ok := s.tasks[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}

	if blockers := s.dependents(id); len(blockers) > 0 {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrDependencyConflict,
			"task %q is required by %s", id, strings.Join(blockers, ", "))
	}

	if err := s.removeFile(id); err != nil {
		return nil, err
	}
	s.remove(id)
	return current.Clone(), nil
}

// AddComment appends a comment to the task's thread and records the mutation
// in the change log. ReplyTo is stored as-is; referential integrity of the
// thread is deliberately not enforced.
func (s *Store) AddComment(ctx context.Context, id string, req CommentRequest) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ledgererrors.Wrap(ledgererrors.ErrEmptyValue, "comment text")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ledgererrors.ErrLedgerClosed
	}
	current, ok := s.tasks[id]
	if !ok {
		return nil, ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}

	now := s.clk.Now().UTC()
	next := current.Clone()
	next.Comments = append(next.Comments, domain.Comment{
		ID:        uuid.NewString(),
		Author:    req.Author,
		Text:      req.Text,
		Mentions:  req.Mentions,
		ReplyTo:   req.ReplyTo,
		Timestamp: now,
	})
	next.UpdatedAt = now
	next.Version = current.Version + 1
	next.ChangeLog = append(next.ChangeLog, domain.ChangeLogEntry{
		Timestamp: now,
		Actor:     req.Author,
		Action:    constants.OpComment,
		FieldDiffs: map[string]domain.FieldDiff{
			"comments": {
				From: fmt.Sprintf("%d", len(current.Comments)),
				To:   fmt.Sprintf("%d", len(next.Comments)),
			},
		},
	})

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.replace(next)
	return next.Clone(), nil
}

// Restore writes a snapshot back into the ledger verbatim, bypassing
// validation and change-log bookkeeping. Undo and conflict resolution restore
// exact prior states; re-validating them could reject history that was legal
// when written. If the task does not exist it is re-inserted (undo of delete).
func (s *Store) Restore(ctx context.Context, snapshot *domain.Task) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if snapshot == nil {
		return ledgererrors.Wrap(ledgererrors.ErrEmptyValue, "snapshot")
	}
	if err := domain.ValidateID(snapshot.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledgererrors.ErrLedgerClosed
	}

	task := snapshot.Clone()
	if err := s.persist(task); err != nil {
		return err
	}
	if _, ok := s.tasks[task.ID]; ok {
		s.replace(task)
	} else {
		s.insert(task)
	}
	return nil
}

// Remove deletes a task without the dependent scan. Used by undo to reverse
// a create; regular deletion goes through Delete.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if err := domain.ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ledgererrors.ErrLedgerClosed
	}
	if _, ok := s.tasks[id]; !ok {
		return ledgererrors.Wrapf(ledgererrors.ErrTaskNotFound, "%q", id)
	}
	if err := s.removeFile(id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

// validateDependencies checks every dependency edge for the task: ids must be
// well-formed, must exist in the ledger, must not point at the task itself,
// and must not close a cycle through existing edges. Caller holds s.mu.
func (s *Store) validateDependencies(taskID string, deps []string) error {
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
		if _, ok := s.tasks[dep]; !ok {
			return ledgererrors.Wrapf(ledgererrors.ErrDependencyUnknown, "%q", dep)
		}
	}

	// Walk the existing graph from each new edge; reaching taskID means the
	// new edges would close a cycle.
	visited := make(map[string]struct{})
	var walk func(id string) bool
	walk = func(id string) bool {
		if id == taskID {
			return true
		}
		if _, done := visited[id]; done {
			return false
		}
		visited[id] = struct{}{}
		task, ok := s.tasks[id]
		if !ok {
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

// insert adds a task to the in-memory index. Caller holds s.mu.
func (s *Store) insert(task *domain.Task) {
	s.tasks[task.ID] = task
	s.pos[task.ID] = len(s.order)
	s.order = append(s.order, task.ID)
	s.gen++
}

// replace swaps the in-memory task, preserving insertion order. Caller holds s.mu.
func (s *Store) replace(task *domain.Task) {
	s.tasks[task.ID] = task
	s.gen++
}

// remove drops a task from the in-memory index. Caller holds s.mu.
func (s *Store) remove(id string) {
	idx, ok := s.pos[id]
	if !ok {
		return
	}
	delete(s.tasks, id)
	delete(s.pos, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	for i := idx; i < len(s.order); i++ {
		s.pos[s.order[i]] = i
	}
	s.gen++
}
