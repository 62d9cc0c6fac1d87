package ledger

import (
	"strings"
	"time"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
)

// CreateRequest carries the caller-supplied fields for a new task.
// The store assigns ID, timestamps, version, and schema version.
type CreateRequest struct {
	// ID, when set, is used instead of a generated UUID. It must be a valid
	// UUID not already present in the ledger. Transactions stage creations
	// with pre-assigned ids so later staged operations can reference them.
	ID string `json:"id,omitempty"`

	// Title is required and bounded by constants.MaxTitleLength.
	Title string `json:"title"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Status defaults to pending when empty.
	Status constants.TaskStatus `json:"status,omitempty"`

	// Priority defaults to medium when empty.
	Priority constants.TaskPriority `json:"priority,omitempty"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// Category is a single classification bucket.
	Category string `json:"category,omitempty"`

	// Assignee names who the task is assigned to.
	Assignee string `json:"assignee,omitempty"`

	// DueDate is the optional due date.
	DueDate *time.Time `json:"due_date,omitempty"`

	// Dependencies lists task IDs that must already exist in the ledger.
	Dependencies []string `json:"dependencies,omitempty"`

	// Subtasks seeds the ordered subtask list.
	Subtasks []domain.Subtask `json:"subtasks,omitempty"`

	// Checklist seeds the ordered checklist.
	Checklist []domain.ChecklistItem `json:"checklist,omitempty"`

	// Actor is recorded in the task's change log.
	Actor string `json:"actor,omitempty"`
}

// TaskUpdate is a partial update. Nil pointer fields are left untouched;
// nil slices are left untouched (an empty non-nil slice clears the list).
type TaskUpdate struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Status      *constants.TaskStatus   `json:"status,omitempty"`
	Priority    *constants.TaskPriority `json:"priority,omitempty"`
	Category    *string                 `json:"category,omitempty"`
	Assignee    *string                 `json:"assignee,omitempty"`

	// DueDate sets a new due date when non-nil. ClearDueDate removes an
	// existing one; setting both is rejected.
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`

	Tags         []string               `json:"tags,omitempty"`
	Dependencies []string               `json:"dependencies,omitempty"`
	Subtasks     []domain.Subtask       `json:"subtasks,omitempty"`
	Checklist    []domain.ChecklistItem `json:"checklist,omitempty"`

	// Actor is recorded in the change-log entry for this update.
	Actor string `json:"actor,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u *TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Category == nil && u.Assignee == nil &&
		u.DueDate == nil && !u.ClearDueDate && u.Tags == nil &&
		u.Dependencies == nil && u.Subtasks == nil && u.Checklist == nil
}

// ApplyTo copies the update's set fields onto the task. The task's version,
// timestamps, and change log are the caller's responsibility.
func (u TaskUpdate) ApplyTo(task *domain.Task) {
	if u.Title != nil {
		task.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Status != nil {
		task.Status = *u.Status
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Category != nil {
		task.Category = *u.Category
	}
	if u.Assignee != nil {
		task.Assignee = *u.Assignee
	}
	if u.DueDate != nil {
		due := *u.DueDate
		task.DueDate = &due
	}
	if u.ClearDueDate {
		task.DueDate = nil
	}
	// Slice fields are copied, not aliased; the update's slices stay the
	// caller's to mutate.
	if u.Tags != nil {
		task.Tags = append([]string(nil), u.Tags...)
	}
	if u.Dependencies != nil {
		task.Dependencies = append([]string(nil), u.Dependencies...)
	}
	if u.Subtasks != nil {
		task.Subtasks = append([]domain.Subtask(nil), u.Subtasks...)
	}
	if u.Checklist != nil {
		task.Checklist = append([]domain.ChecklistItem(nil), u.Checklist...)
	}
}

// CommentRequest carries the fields for a new comment on a task.
type CommentRequest struct {
	Author   string   `json:"author"`
	Text     string   `json:"text"`
	Mentions []string `json:"mentions,omitempty"`
	ReplyTo  string   `json:"reply_to,omitempty"`
}

// ListRequest selects a page of tasks. Zero values mean defaults: page 1,
// constants.DefaultPageSize, archived tasks excluded, no field filters.
type ListRequest struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`

	// IncludeArchived includes soft-deleted tasks in the listing.
	IncludeArchived bool `json:"include_archived,omitempty"`

	Status   *constants.TaskStatus   `json:"status,omitempty"`
	Priority *constants.TaskPriority `json:"priority,omitempty"`
	Tag      string                  `json:"tag,omitempty"`
	Assignee string                  `json:"assignee,omitempty"`
	Category string                  `json:"category,omitempty"`
}

// ListResult is one page of tasks plus the total count of tasks matching the
// filters across all pages.
type ListResult struct {
	Tasks    []*domain.Task `json:"tasks"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
