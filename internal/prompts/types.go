package prompts

import (
	"time"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
)

// PromptID identifies a specific prompt template.
type PromptID string

// Prompt identifiers for the text the engine can generate from task
// snapshots. The generators are strictly read-only consumers: they receive
// plain data built from snapshots and never see the store.
const (
	// TaskSummary renders a one-task natural-language summary.
	TaskSummary PromptID = "task/summary"

	// TaskReview renders a review request for a completed task.
	TaskReview PromptID = "task/review"

	// StandupDigest renders a standup-style digest across tasks.
	StandupDigest PromptID = "task/standup"
)

// TaskSummaryData is the input for the summary prompt.
type TaskSummaryData struct {
	Title       string
	Status      string
	Priority    string
	Description string
	Assignee    string
	Tags        []string
	DueDate     string
	Subtasks    []SubtaskLine
	Comments    int
}

// SubtaskLine is one subtask for prompt display.
type SubtaskLine struct {
	Title string
	Done  bool
}

// TaskReviewData is the input for the review prompt.
type TaskReviewData struct {
	Title       string
	Description string
	Assignee    string
	ChangeCount int
}

// StandupLine is one task in a standup digest.
type StandupLine struct {
	Title    string
	Assignee string
}

// StandupDigestData is the input for the standup prompt.
type StandupDigestData struct {
	Date       string
	InProgress []StandupLine
	Completed  []StandupLine
	Blocked    []StandupLine
}

// NewTaskSummaryData flattens a task snapshot for the summary prompt.
func NewTaskSummaryData(task *domain.Task) TaskSummaryData {
	data := TaskSummaryData{
		Title:       task.Title,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Description: task.Description,
		Assignee:    task.Assignee,
		Tags:        task.Tags,
		Comments:    len(task.Comments),
	}
	if task.DueDate != nil {
		data.DueDate = task.DueDate.UTC().Format("2006-01-02")
	}
	for _, st := range task.Subtasks {
		data.Subtasks = append(data.Subtasks, SubtaskLine{Title: st.Title, Done: st.Done})
	}
	return data
}

// NewTaskReviewData flattens a task snapshot for the review prompt.
func NewTaskReviewData(task *domain.Task) TaskReviewData {
	return TaskReviewData{
		Title:       task.Title,
		Description: task.Description,
		Assignee:    task.Assignee,
		ChangeCount: len(task.ChangeLog),
	}
}

// NewStandupDigestData groups task snapshots by status for the standup prompt.
func NewStandupDigestData(tasks []*domain.Task, date time.Time) StandupDigestData {
	data := StandupDigestData{Date: date.UTC().Format("2006-01-02")}
	for _, task := range tasks {
		if task.Archived {
			continue
		}
		line := StandupLine{Title: task.Title, Assignee: task.Assignee}
		switch task.Status {
		case constants.TaskStatusInProgress:
			data.InProgress = append(data.InProgress, line)
		case constants.TaskStatusCompleted:
			data.Completed = append(data.Completed, line)
		case constants.TaskStatusBlocked:
			data.Blocked = append(data.Blocked, line)
		case constants.TaskStatusPending:
			// Pending work is not part of a standup digest.
		}
	}
	return data
}
