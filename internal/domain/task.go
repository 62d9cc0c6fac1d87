// Package domain provides shared domain types for the taskledger engine.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// Task is the core ledger entity.
//
// Example JSON representation:
//
//	{
//	    "id": "5f0c2a9e-03a1-4f2b-9c9a-2f6f6d3f7b1e",
//	    "title": "Deploy ArgoCD to production",
//	    "status": "in_progress",
//	    "priority": "high",
//	    "tags": ["infra"],
//	    "dependencies": ["..."],
//	    "version": 3,
//	    "created_at": "2026-01-14T10:00:00Z",
//	    "updated_at": "2026-01-15T09:30:00Z",
//	    "schema_version": 1
//	}
type Task struct {
	// ID is the unique identifier for the task. UUID v4, assigned at
	// creation, immutable for the life of the ledger.
	ID string `json:"id"`

	// Title is the short human-readable summary. Required, non-empty.
	Title string `json:"title"`

	// Description is free-text detail for the task.
	Description string `json:"description,omitempty"`

	// Status is the lifecycle state. Member of the closed set in
	// internal/constants. Transitions are unrestricted.
	Status constants.TaskStatus `json:"status"`

	// Priority is the priority level. Member of the closed set in
	// internal/constants.
	Priority constants.TaskPriority `json:"priority"`

	// Tags are free-form classification labels.
	Tags []string `json:"tags,omitempty"`

	// Category is a single classification bucket (e.g., "infra", "docs").
	Category string `json:"category,omitempty"`

	// Assignee names who the task is assigned to.
	Assignee string `json:"assignee,omitempty"`

	// DueDate is the optional date the task is due (nil if unset).
	DueDate *time.Time `json:"due_date,omitempty"`

	// Dependencies is the set of task IDs this task requires to be resolved
	// first. The relation must stay acyclic; BlockedBy is the derived inverse
	// and is never persisted.
	Dependencies []string `json:"dependencies,omitempty"`

	// Subtasks is an ordered list of sub-items. Subtasks are not separately
	// addressable entities.
	Subtasks []Subtask `json:"subtasks,omitempty"`

	// Checklist is an ordered list of checklist items.
	Checklist []ChecklistItem `json:"checklist,omitempty"`

	// Archived marks the task as soft-deleted: still addressable, excluded
	// from default listings and from dependency-conflict checks.
	Archived bool `json:"archived,omitempty"`

	// ArchivedAt is when the task was archived (nil if not archived).
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last mutated.
	UpdatedAt time.Time `json:"updated_at"`

	// Version is a monotonically incrementing counter bumped on every
	// successful mutation. Basis for optimistic-concurrency checks and for
	// ordering in the audit trail. Never left unchanged by a mutation.
	Version int64 `json:"version"`

	// ChangeLog is the ordered, append-only mutation history. Every committed
	// mutation produces exactly one entry.
	ChangeLog []ChangeLogEntry `json:"change_log,omitempty"`

	// Comments is the ordered comment thread.
	Comments []Comment `json:"comments,omitempty"`

	// SchemaVersion indicates the version of the Task struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// Subtask is an ordered sub-item of a task. Not separately addressable.
type Subtask struct {
	// Title is the subtask text.
	Title string `json:"title"`

	// Done marks the subtask as finished.
	Done bool `json:"done,omitempty"`
}

// ChecklistItem is a single checklist entry on a task.
type ChecklistItem struct {
	// Text is the checklist item text.
	Text string `json:"text"`

	// Checked marks the item as done.
	Checked bool `json:"checked,omitempty"`
}

// FieldDiff records the before and after values of a single scalar field,
// rendered as strings for audit display (e.g., assignee: {from, to}).
type FieldDiff struct {
	// From is the value before the mutation.
	From string `json:"from"`

	// To is the value after the mutation.
	To string `json:"to"`
}

// ChangeLogEntry records one committed mutation on a task.
type ChangeLogEntry struct {
	// Timestamp is when the mutation committed.
	Timestamp time.Time `json:"timestamp"`

	// Actor identifies who performed the mutation.
	Actor string `json:"actor,omitempty"`

	// Action is the operation type (create, update, archive, ...).
	Action constants.OperationType `json:"action"`

	// FieldDiffs maps changed field names to their before/after values.
	// Empty for create entries.
	FieldDiffs map[string]FieldDiff `json:"field_diffs,omitempty"`
}

// Comment is a single entry in a task's comment thread.
// ReplyTo referential integrity is deliberately not enforced: a reply may
// reference a comment that was never recorded here.
type Comment struct {
	// ID is the unique comment identifier (UUID v4).
	ID string `json:"id"`

	// Author names who wrote the comment.
	Author string `json:"author"`

	// Text is the comment body.
	Text string `json:"text"`

	// Mentions lists free-form references to people or tasks.
	Mentions []string `json:"mentions,omitempty"`

	// ReplyTo is the parent comment ID when this comment is a reply.
	ReplyTo string `json:"reply_to,omitempty"`

	// Timestamp is when the comment was added.
	Timestamp time.Time `json:"timestamp"`
}

// NewTaskID generates a new task identifier.
func NewTaskID() string {
	return uuid.NewString()
}

// ValidateID checks that id has the expected UUID shape.
// A malformed ID is reported as ErrInvalidTaskID, distinct from a
// well-formed ID that does not exist.
func ValidateID(id string) error {
	if id == "" {
		return ledgererrors.Wrap(ledgererrors.ErrInvalidTaskID, "empty id")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ledgererrors.Wrapf(ledgererrors.ErrInvalidTaskID, "%q", id)
	}
	return nil
}

// Validate checks the structural invariants that do not require ledger
// context: non-empty title within bounds, closed-set status and priority.
// Dependency integrity is checked by the store, which can see other tasks.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ledgererrors.NewValidationReason("title", t.Title, "title is required")
	}
	if len(t.Title) > constants.MaxTitleLength {
		return ledgererrors.NewValidationReason("title", t.Title, "title too long")
	}
	if !t.Status.IsValid() {
		return ledgererrors.NewValidationError("status", string(t.Status), statusStrings())
	}
	if !t.Priority.IsValid() {
		return ledgererrors.NewValidationError("priority", string(t.Priority), priorityStrings())
	}
	return nil
}

// statusStrings returns the closed status set as plain strings for
// validation error reporting.
func statusStrings() []string {
	statuses := constants.ValidTaskStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// priorityStrings returns the closed priority set as plain strings for
// validation error reporting.
func priorityStrings() []string {
	priorities := constants.ValidTaskPriorities()
	out := make([]string, len(priorities))
	for i, p := range priorities {
		out[i] = string(p)
	}
	return out
}

// Clone returns a deep copy of the task. Undo snapshots and transaction
// staging rely on clones never sharing slices or maps with the original.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t

	c.Tags = cloneStrings(t.Tags)
	c.Dependencies = cloneStrings(t.Dependencies)

	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.ArchivedAt != nil {
		at := *t.ArchivedAt
		c.ArchivedAt = &at
	}

	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	if t.Checklist != nil {
		c.Checklist = make([]ChecklistItem, len(t.Checklist))
		copy(c.Checklist, t.Checklist)
	}

	if t.ChangeLog != nil {
		c.ChangeLog = make([]ChangeLogEntry, len(t.ChangeLog))
		for i, entry := range t.ChangeLog {
			cloned := entry
			if entry.FieldDiffs != nil {
				cloned.FieldDiffs = make(map[string]FieldDiff, len(entry.FieldDiffs))
				for k, v := range entry.FieldDiffs {
					cloned.FieldDiffs[k] = v
				}
			}
			c.ChangeLog[i] = cloned
		}
	}

	if t.Comments != nil {
		c.Comments = make([]Comment, len(t.Comments))
		for i, comment := range t.Comments {
			cloned := comment
			cloned.Mentions = cloneStrings(comment.Mentions)
			c.Comments[i] = cloned
		}
	}

	return &c
}

// cloneStrings copies a string slice, preserving nil.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// HasDependency reports whether the task lists id in its dependencies.
func (t *Task) HasDependency(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
