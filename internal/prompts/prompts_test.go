package prompts

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func TestRenderTaskSummary(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		data     TaskSummaryData
		contains []string
		excludes []string
	}{
		{
			name: "full task",
			data: TaskSummaryData{
				Title:       "Deploy ArgoCD to production",
				Status:      "in_progress",
				Priority:    "high",
				Description: "Roll out the new sync pipeline.",
				Assignee:    "drew",
				Tags:        []string{"infra", "deploy"},
				DueDate:     due.Format("2006-01-02"),
				Subtasks: []SubtaskLine{
					{Title: "Stage manifests", Done: true},
					{Title: "Cut over DNS", Done: false},
				},
				Comments: 2,
			},
			contains: []string{
				"Task: Deploy ArgoCD to production",
				"Status: in_progress",
				"Priority: high",
				"Assignee: drew",
				"Due: 2026-09-15",
				"Tags: infra, deploy",
				"Roll out the new sync pipeline.",
				"[x] Stage manifests",
				"[ ] Cut over DNS",
				"2 comment(s)",
			},
		},
		{
			name: "minimal task omits optional sections",
			data: TaskSummaryData{
				Title:    "Fix login timeout",
				Status:   "pending",
				Priority: "medium",
			},
			contains: []string{"Task: Fix login timeout"},
			excludes: []string{"Assignee:", "Due:", "Tags:", "Subtasks:", "comment(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(TaskSummary, tt.data)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestRenderTaskReview(t *testing.T) {
	got, err := Render(TaskReview, TaskReviewData{
		Title:       "Write API documentation",
		Description: "Cover the v2 endpoints.",
		Assignee:    "sam",
		ChangeCount: 4,
	})
	require.NoError(t, err)
	assert.Contains(t, got, "Task: Write API documentation")
	assert.Contains(t, got, "Completed by: sam")
	assert.Contains(t, got, "Cover the v2 endpoints.")
	assert.Contains(t, got, "4 recorded change(s)")
}

func TestRenderStandupDigest(t *testing.T) {
	t.Run("grouped sections", func(t *testing.T) {
		got, err := Render(StandupDigest, StandupDigestData{
			Date:       "2026-08-26",
			InProgress: []StandupLine{{Title: "Deploy ArgoCD", Assignee: "drew"}},
			Completed:  []StandupLine{{Title: "Write API docs"}},
			Blocked:    []StandupLine{{Title: "Rotate secrets", Assignee: "sam"}},
		})
		require.NoError(t, err)
		assert.Contains(t, got, "Standup digest for 2026-08-26")
		assert.Contains(t, got, "- Deploy ArgoCD (drew)")
		assert.Contains(t, got, "- Write API docs")
		assert.NotContains(t, got, "- Write API docs (")
		assert.Contains(t, got, "Blocked:")
		assert.Contains(t, got, "- Rotate secrets (sam)")
	})

	t.Run("empty digest", func(t *testing.T) {
		got, err := Render(StandupDigest, StandupDigestData{Date: "2026-08-26"})
		require.NoError(t, err)
		assert.Contains(t, got, "No active work to report.")
	})
}

func TestNewTaskSummaryData(t *testing.T) {
	due := time.Date(2026, 9, 15, 12, 30, 0, 0, time.UTC)
	task := &domain.Task{
		ID:          domain.NewTaskID(),
		Title:       "Deploy ArgoCD",
		Status:      constants.TaskStatusInProgress,
		Priority:    constants.TaskPriorityHigh,
		Description: "Roll out",
		Assignee:    "drew",
		Tags:        []string{"infra"},
		DueDate:     &due,
		Subtasks:    []domain.Subtask{{Title: "Stage", Done: true}},
		Comments:    []domain.Comment{{Text: "on it"}},
	}

	data := NewTaskSummaryData(task)
	assert.Equal(t, "Deploy ArgoCD", data.Title)
	assert.Equal(t, "in_progress", data.Status)
	assert.Equal(t, "2026-09-15", data.DueDate)
	require.Len(t, data.Subtasks, 1)
	assert.True(t, data.Subtasks[0].Done)
	assert.Equal(t, 1, data.Comments)
}

func TestNewStandupDigestData(t *testing.T) {
	tasks := []*domain.Task{
		{Title: "a", Status: constants.TaskStatusInProgress},
		{Title: "b", Status: constants.TaskStatusCompleted},
		{Title: "c", Status: constants.TaskStatusBlocked},
		{Title: "d", Status: constants.TaskStatusPending},
		{Title: "e", Status: constants.TaskStatusInProgress, Archived: true},
	}

	data := NewStandupDigestData(tasks, time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-26", data.Date)
	require.Len(t, data.InProgress, 1)
	assert.Equal(t, "a", data.InProgress[0].Title)
	assert.Len(t, data.Completed, 1)
	assert.Len(t, data.Blocked, 1)
}

func TestRegistry(t *testing.T) {
	t.Run("all prompt IDs registered", func(t *testing.T) {
		for _, id := range []PromptID{TaskSummary, TaskReview, StandupDigest} {
			assert.True(t, Exists(id), "prompt %s should be registered", id)
		}
	})

	t.Run("list is sorted and complete", func(t *testing.T) {
		ids := List()
		require.Len(t, ids, 3)
		assert.Equal(t, []PromptID{TaskReview, StandupDigest, TaskSummary}, ids)
	})

	t.Run("unknown prompt", func(t *testing.T) {
		_, err := Render(PromptID("task/nonexistent"), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ledgererrors.ErrTemplateNotFound))
	})

	t.Run("source retrievable", func(t *testing.T) {
		src, err := GetTemplate(TaskSummary)
		require.NoError(t, err)
		assert.True(t, strings.Contains(src, "{{.Title}}"))
	})
}
