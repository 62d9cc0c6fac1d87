package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range ValidTaskStatuses() {
		assert.True(t, s.IsValid(), "status %q should be valid", s)
	}

	invalid := []TaskStatus{"", "done", "PENDING", "cancelled"}
	for _, s := range invalid {
		assert.False(t, s.IsValid(), "status %q should be invalid", s)
	}
}

func TestTaskPriority_IsValid(t *testing.T) {
	t.Parallel()

	for _, p := range ValidTaskPriorities() {
		assert.True(t, p.IsValid(), "priority %q should be valid", p)
	}

	invalid := []TaskPriority{"", "urgent", "Critical", "p0"}
	for _, p := range invalid {
		assert.False(t, p.IsValid(), "priority %q should be invalid", p)
	}
}

func TestStringers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "in_progress", TaskStatusInProgress.String())
	assert.Equal(t, "critical", TaskPriorityCritical.String())
	assert.Equal(t, "resolve_conflict", OpResolve.String())
}
