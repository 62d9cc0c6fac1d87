package constants

// TaskStatus represents the lifecycle state of a task in the ledger.
// Status values use snake_case for JSON serialization compatibility.
//
// Transitions between statuses are unrestricted; dependency rules only
// constrain hard deletion, not status changes.
type TaskStatus string

// Task status constants define the closed set of task states.
const (
	// TaskStatusPending indicates a task that has not been started.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress indicates a task someone is actively working on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates a finished task. Completed tasks render
	// as checked items in the mirror file.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusBlocked indicates a task that cannot proceed, typically
	// because one of its dependencies is unresolved.
	TaskStatusBlocked TaskStatus = "blocked"
)

// ValidTaskStatuses returns all valid task status values.
func ValidTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked}
}

// IsValid checks if the status is a member of the closed set.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

// Task priority constants define the closed set of priority levels.
const (
	// TaskPriorityLow indicates work that can wait.
	TaskPriorityLow TaskPriority = "low"

	// TaskPriorityMedium is the default priority for new tasks.
	TaskPriorityMedium TaskPriority = "medium"

	// TaskPriorityHigh indicates work that should be picked up soon.
	TaskPriorityHigh TaskPriority = "high"

	// TaskPriorityCritical indicates work that blocks everything else.
	TaskPriorityCritical TaskPriority = "critical"
)

// ValidTaskPriorities returns all valid task priority values.
func ValidTaskPriorities() []TaskPriority {
	return []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical}
}

// IsValid checks if the priority is a member of the closed set.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the TaskPriority.
func (p TaskPriority) String() string {
	return string(p)
}

// OperationType classifies a recorded ledger mutation. These values appear in
// the undo history, the audit trail, and task change logs.
type OperationType string

// Operation type constants.
const (
	// OpCreate records a task creation.
	OpCreate OperationType = "create"

	// OpUpdate records a partial field update.
	OpUpdate OperationType = "update"

	// OpArchive records a soft delete.
	OpArchive OperationType = "archive"

	// OpDelete records a hard delete.
	OpDelete OperationType = "delete"

	// OpComment records a comment addition.
	OpComment OperationType = "comment"

	// OpResolve records a mirror conflict resolution applied to the ledger.
	OpResolve OperationType = "resolve_conflict"

	// OpUndo records the reversal of a previous operation.
	OpUndo OperationType = "undo"
)

// String returns the string representation of the OperationType.
func (o OperationType) String() string {
	return string(o)
}
