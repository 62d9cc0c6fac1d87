package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func validTask() *Task {
	now := time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)
	return &Task{
		ID:        NewTaskID(),
		Title:     "Deploy ArgoCD to production",
		Status:    constants.TaskStatusPending,
		Priority:  constants.TaskPriorityHigh,
		Tags:      []string{"infra", "deploy"},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	t.Run("accepts uuid", func(t *testing.T) {
		require.NoError(t, ValidateID(NewTaskID()))
	})

	t.Run("rejects empty", func(t *testing.T) {
		assert.ErrorIs(t, ValidateID(""), ledgererrors.ErrInvalidTaskID)
	})

	t.Run("rejects malformed", func(t *testing.T) {
		assert.ErrorIs(t, ValidateID("task-123"), ledgererrors.ErrInvalidTaskID)
	})
}

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid task passes", func(t *testing.T) {
		require.NoError(t, validTask().Validate())
	})

	t.Run("empty title rejected", func(t *testing.T) {
		task := validTask()
		task.Title = "   "
		err := task.Validate()
		assert.ErrorIs(t, err, ledgererrors.ErrValidation)
	})

	t.Run("bad status rejected with valid values", func(t *testing.T) {
		task := validTask()
		task.Status = "done"
		err := task.Validate()
		require.ErrorIs(t, err, ledgererrors.ErrValidation)
		assert.Contains(t, err.Error(), "pending")
	})

	t.Run("typo priority gets suggestion", func(t *testing.T) {
		task := validTask()
		task.Priority = "criticl"
		err := task.Validate()
		require.ErrorIs(t, err, ledgererrors.ErrValidation)
		assert.Contains(t, err.Error(), `Did you mean "critical"?`)
	})
}

func TestTask_Clone(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	task := validTask()
	task.DueDate = &due
	task.Dependencies = []string{"dep-1"}
	task.Subtasks = []Subtask{{Title: "step one"}}
	task.Checklist = []ChecklistItem{{Text: "review", Checked: true}}
	task.ChangeLog = []ChangeLogEntry{{
		Action:     constants.OpUpdate,
		FieldDiffs: map[string]FieldDiff{"title": {From: "a", To: "b"}},
	}}
	task.Comments = []Comment{{ID: "c1", Author: "amy", Text: "hi", Mentions: []string{"bob"}}}

	clone := task.Clone()
	require.NotSame(t, task, clone)
	assert.Equal(t, task, clone)

	// Mutating the clone must not leak into the original.
	clone.Tags[0] = "changed"
	clone.Dependencies[0] = "changed"
	*clone.DueDate = clone.DueDate.Add(time.Hour)
	clone.Subtasks[0].Done = true
	clone.ChangeLog[0].FieldDiffs["title"] = FieldDiff{From: "x", To: "y"}
	clone.Comments[0].Mentions[0] = "changed"

	assert.Equal(t, "infra", task.Tags[0])
	assert.Equal(t, "dep-1", task.Dependencies[0])
	assert.Equal(t, due, *task.DueDate)
	assert.False(t, task.Subtasks[0].Done)
	assert.Equal(t, FieldDiff{From: "a", To: "b"}, task.ChangeLog[0].FieldDiffs["title"])
	assert.Equal(t, "bob", task.Comments[0].Mentions[0])
}

func TestOperationRecord_Diff(t *testing.T) {
	t.Parallel()

	t.Run("create has empty diff", func(t *testing.T) {
		rec := &OperationRecord{After: validTask(), Type: constants.OpCreate}
		assert.Empty(t, rec.Diff())
	})

	t.Run("update diffs changed scalar fields only", func(t *testing.T) {
		before := validTask()
		after := before.Clone()
		after.Assignee = "amy"
		after.Status = constants.TaskStatusInProgress

		rec := &OperationRecord{Before: before, After: after, Type: constants.OpUpdate}
		diffs := rec.Diff()

		require.Len(t, diffs, 2)
		assert.Equal(t, FieldDiff{From: "", To: "amy"}, diffs["assignee"])
		assert.Equal(t, FieldDiff{From: "pending", To: "in_progress"}, diffs["status"])
	})

	t.Run("tag changes are diffed as joined lists", func(t *testing.T) {
		before := validTask()
		after := before.Clone()
		after.Tags = []string{"infra"}

		rec := &OperationRecord{Before: before, After: after, Type: constants.OpUpdate}
		diffs := rec.Diff()
		assert.Equal(t, FieldDiff{From: "infra,deploy", To: "infra"}, diffs["tags"])
	})
}

func TestTask_Helpers(t *testing.T) {
	t.Parallel()

	task := validTask()
	task.Dependencies = []string{"a", "b"}

	assert.True(t, task.HasDependency("a"))
	assert.False(t, task.HasDependency("c"))
	assert.True(t, task.HasTag("infra"))
	assert.False(t, task.HasTag("nope"))
}
