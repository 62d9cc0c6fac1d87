package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/clock"
	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func TestTableRendering(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()

	t.Run("header and rows aligned", func(t *testing.T) {
		var buf bytes.Buffer
		table := NewTable(&buf, []TableColumn{
			{Name: "ID", Width: 8},
			{Name: "COUNT", Width: 5, Align: AlignRight},
		})
		table.WriteHeader()
		table.WriteRow("abc", "42")

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "ID")
		assert.Contains(t, lines[1], "abc")
		assert.True(t, strings.HasSuffix(lines[1], "   42"))
	})

	t.Run("long values truncated", func(t *testing.T) {
		var buf bytes.Buffer
		table := NewTable(&buf, []TableColumn{{Name: "TITLE", Width: 10}})
		table.WriteRow("a very long task title")
		assert.Contains(t, buf.String(), "…")
		assert.NotContains(t, buf.String(), "long task title")
	})

	t.Run("task table", func(t *testing.T) {
		due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		var buf bytes.Buffer
		WriteTaskTable(&buf, []*domain.Task{
			{
				ID:       "3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19",
				Title:    "Deploy ArgoCD",
				Status:   constants.TaskStatusInProgress,
				Priority: constants.TaskPriorityHigh,
				Assignee: "drew",
				DueDate:  &due,
			},
		})
		out := buf.String()
		assert.Contains(t, out, "3d1f0c5e")
		assert.NotContains(t, out, "7b2a-4e8d")
		assert.Contains(t, out, "Deploy ArgoCD")
		assert.Contains(t, out, "in_progress")
		assert.Contains(t, out, "2026-09-01")
	})
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3d1f0c5e", ShortID("3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19"))
	assert.Equal(t, "plain", ShortID("plain"))
}

func TestStatusIcons(t *testing.T) {
	assert.Equal(t, "○", TaskStatusIcon(constants.TaskStatusPending))
	assert.Equal(t, "●", TaskStatusIcon(constants.TaskStatusInProgress))
	assert.Equal(t, "✓", TaskStatusIcon(constants.TaskStatusCompleted))
	assert.Equal(t, "⊘", TaskStatusIcon(constants.TaskStatusBlocked))
	assert.Equal(t, "?", TaskStatusIcon(constants.TaskStatus("bogus")))
}

func TestTTYOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	CheckNoColor()

	var buf bytes.Buffer
	out := NewTTYOutput(&buf)
	out.Success("task created")
	out.Warning("mirror is stale")
	out.Error(ledgererrors.ErrTaskNotFound)

	text := buf.String()
	assert.Contains(t, text, "✓ task created")
	assert.Contains(t, text, "⚠ mirror is stale")
	// Known sentinels carry a recovery suggestion on the following line.
	assert.Contains(t, text, "✗")
	assert.Contains(t, strings.ToLower(text), "task")
}

func TestJSONOutput(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewJSONOutput(&buf)
		out.Success("done")
		out.Info("detail")

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 2)

		var msg jsonMessage
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &msg))
		assert.Equal(t, "success", msg.Type)
		assert.Equal(t, "done", msg.Message)
	})

	t.Run("error carries suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		out := NewJSONOutput(&buf)
		out.Error(ledgererrors.Wrap(ledgererrors.ErrTaskNotFound, "show task"))

		var got jsonError
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "error", got.Type)
		assert.NotEmpty(t, got.Message)
		assert.NotEmpty(t, got.Suggestion)
		assert.Contains(t, got.Details, "show task")
	})

	t.Run("format selector", func(t *testing.T) {
		var buf bytes.Buffer
		_, isJSON := NewOutput(&buf, "json").(*JSONOutput)
		assert.True(t, isJSON)
		_, isTTY := NewOutput(&buf, "text").(*TTYOutput)
		assert.True(t, isTTY)
	})
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour", now.Add(-90 * time.Minute), "1 hour ago"},
		{"days", now.Add(-49 * time.Hour), "2 days ago"},
		{"weeks", now.Add(-15 * 24 * time.Hour), "2 weeks ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTimeWith(tt.t, clk))
		})
	}
}

func TestDueLabel(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	assert.Equal(t, "-", DueLabel(nil, clk))

	future := now.Add(48 * time.Hour)
	assert.Equal(t, "2026-08-28", DueLabel(&future, clk))

	past := now.Add(-48 * time.Hour)
	assert.Equal(t, "2026-08-24 (overdue)", DueLabel(&past, clk))
}

func TestProgressBar(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	pb := NewProgressBar(20)
	assert.Equal(t, 20, pb.Width())

	empty := pb.Render(0)
	full := pb.Render(1)
	assert.NotEqual(t, empty, full)

	// Out-of-range percentages clamp instead of panicking.
	assert.Equal(t, empty, pb.Render(-0.5))
	assert.Equal(t, full, pb.Render(1.5))

	counter := pb.RenderCounter(42, 100)
	assert.True(t, strings.HasPrefix(counter, "42/100 "))

	zero := pb.RenderCounter(0, 0)
	assert.True(t, strings.HasPrefix(zero, "0/0 "))
}
