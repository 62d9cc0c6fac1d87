package domain

import (
	"time"

	"github.com/taskledger/taskledger/internal/constants"
)

// OperationRecord is a reversible delta capturing one committed mutation.
// Before and After are deep-cloned snapshots so later mutations of the live
// task can never corrupt the history. A nil Before means the operation
// created the task; a nil After means it deleted the task.
//
// OperationRecords feed three consumers: the bounded undo history, the
// append-only audit trail, and any registered operation subscribers.
// They are not user-addressable.
type OperationRecord struct {
	// TaskID identifies the mutated task.
	TaskID string `json:"task_id"`

	// Before is the task state prior to the mutation (nil for create).
	Before *Task `json:"before,omitempty"`

	// After is the task state after the mutation (nil for delete).
	After *Task `json:"after,omitempty"`

	// Type classifies the mutation.
	Type constants.OperationType `json:"type"`

	// Actor identifies who performed the mutation.
	Actor string `json:"actor,omitempty"`

	// Description is a short human-readable summary for audit display.
	Description string `json:"description,omitempty"`

	// RecordedAt is when the record was captured.
	RecordedAt time.Time `json:"recorded_at"`
}

// Diff computes per-field {from, to} entries between the record's Before and
// After snapshots, covering the scalar fields shown in audit output. Create
// and delete records return an empty map.
func (r *OperationRecord) Diff() map[string]FieldDiff {
	diffs := make(map[string]FieldDiff)
	if r.Before == nil || r.After == nil {
		return diffs
	}

	addDiff(diffs, "title", r.Before.Title, r.After.Title)
	addDiff(diffs, "description", r.Before.Description, r.After.Description)
	addDiff(diffs, "status", string(r.Before.Status), string(r.After.Status))
	addDiff(diffs, "priority", string(r.Before.Priority), string(r.After.Priority))
	addDiff(diffs, "category", r.Before.Category, r.After.Category)
	addDiff(diffs, "assignee", r.Before.Assignee, r.After.Assignee)
	addDiff(diffs, "due_date", formatTimePtr(r.Before.DueDate), formatTimePtr(r.After.DueDate))
	addDiff(diffs, "tags", joinList(r.Before.Tags), joinList(r.After.Tags))
	addDiff(diffs, "dependencies", joinList(r.Before.Dependencies), joinList(r.After.Dependencies))
	addDiff(diffs, "archived", formatBool(r.Before.Archived), formatBool(r.After.Archived))

	return diffs
}

// addDiff records a FieldDiff only when the values differ.
func addDiff(diffs map[string]FieldDiff, field, from, to string) {
	if from != to {
		diffs[field] = FieldDiff{From: from, To: to}
	}
}

// formatTimePtr renders an optional time for diff display.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// formatBool renders a bool for diff display.
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// joinList renders a string slice for diff display.
func joinList(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}
