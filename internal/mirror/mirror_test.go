package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/journal"
	"github.com/taskledger/taskledger/internal/ledger"
)

// newTestEngine wires a store, recorder, and engine in a temp project.
func newTestEngine(t *testing.T) (*journal.Recorder, *Engine) {
	t.Helper()

	root := t.TempDir()
	store, err := ledger.Open(context.Background(), root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rec := journal.NewRecorder(store)
	return rec, NewEngine(rec, filepath.Join(root, constants.MirrorFileName))
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()

	rec, engine := newTestEngine(t)
	ctx := context.Background()

	inProgress := constants.TaskStatusInProgress
	first, err := rec.Create(ctx, ledger.CreateRequest{
		Title:       "Deploy ArgoCD to production",
		Description: "needs the new helm chart\nand a maintenance window",
		Status:      inProgress,
	})
	require.NoError(t, err)

	second, err := rec.Create(ctx, ledger.CreateRequest{
		Title:  "Write postmortem",
		Status: constants.TaskStatusCompleted,
	})
	require.NoError(t, err)

	// Archived tasks stay out of the mirror.
	archived, err := rec.Create(ctx, ledger.CreateRequest{Title: "old noise"})
	require.NoError(t, err)
	_, err = rec.Archive(ctx, archived.ID, "")
	require.NoError(t, err)

	require.NoError(t, engine.WriteMirror(ctx))
	data, err := os.ReadFile(engine.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "- [ ] "+first.ID+": Deploy ArgoCD to production")
	assert.Contains(t, content, "- [x] "+second.ID+": Write postmortem")
	assert.NotContains(t, content, archived.ID)

	parsed := Parse(content)
	assert.Empty(t, parsed.Warnings)
	require.Len(t, parsed.Entries, 2)

	byID := make(map[string]Entry)
	for _, entry := range parsed.Entries {
		byID[entry.ID] = entry
	}
	assert.Equal(t, "Deploy ArgoCD to production", byID[first.ID].Title)
	assert.Equal(t, inProgress, byID[first.ID].Status)
	assert.Equal(t, "needs the new helm chart\nand a maintenance window", byID[first.ID].Description)
	assert.Equal(t, constants.TaskStatusCompleted, byID[second.ID].Status)

	// Rendering the same state twice yields identical bytes.
	tasks, err := rec.Store().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, content, Render(tasks))
}

func TestParseSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"# Tasks",
		"",
		"## Pending",
		"",
		"- [ ] 0b54f3f2-89a4-4f9e-9c31-6a2d3c1f9e11: good item",
		"- [ ] not-a-uuid: broken id",
		"- malformed bullet with no checkbox",
		"stray prose line",
		"> orphan description",
		"",
		"## Someday",
		"- [ ] 46a9f9f3-31f4-4f6e-8f0e-0d1c2b3a4958: under unknown section",
	}, "\n")

	parsed := Parse(content)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "good item", parsed.Entries[0].Title)
	assert.Len(t, parsed.Warnings, 6)
}

func TestDetectExternalEdit(t *testing.T) {
	t.Parallel()

	rec, engine := newTestEngine(t)
	ctx := context.Background()

	_, err := rec.Create(ctx, ledger.CreateRequest{Title: "watch me"})
	require.NoError(t, err)
	require.NoError(t, engine.WriteMirror(ctx))

	edited, err := engine.DetectExternalEdit()
	require.NoError(t, err)
	assert.False(t, edited)

	data, err := os.ReadFile(engine.Path())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(engine.Path(), append(data, []byte("\nhuman note\n")...), 0o644))

	edited, err = engine.DetectExternalEdit()
	require.NoError(t, err)
	assert.True(t, edited)

	require.NoError(t, os.Remove(engine.Path()))
	edited, err = engine.DetectExternalEdit()
	require.NoError(t, err)
	assert.True(t, edited)
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	t.Run("single edited field yields one conflict", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		task, err := rec.Create(ctx, ledger.CreateRequest{Title: "original title"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "original title", "edited title", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))

		conflicts, warnings, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		require.Len(t, conflicts, 1)
		assert.Equal(t, ConflictTitleMismatch, conflicts[0].Type)
		assert.Equal(t, task.ID, conflicts[0].TaskID)
		assert.Equal(t, "original title", conflicts[0].LedgerValue)
		assert.Equal(t, "edited title", conflicts[0].MirrorValue)
	})

	t.Run("checked box reads as completed", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		_, err := rec.Create(ctx, ledger.CreateRequest{Title: "tick me"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "- [ ]", "- [x]", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, ConflictStatusMismatch, conflicts[0].Type)
		assert.Equal(t, "completed", conflicts[0].MirrorValue)
	})

	t.Run("missing and unknown tasks", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		task, err := rec.Create(ctx, ledger.CreateRequest{Title: "vanishes"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		content := strings.Join([]string{
			"# Tasks",
			"",
			"## Pending",
			"",
			"- [ ] 99999999-aaaa-4bbb-8ccc-dddddddddddd: added by hand",
			"",
		}, "\n")
		require.NoError(t, os.WriteFile(engine.Path(), []byte(content), 0o644))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 2)

		types := map[ConflictType]string{}
		for _, c := range conflicts {
			types[c.Type] = c.TaskID
		}
		assert.Equal(t, task.ID, types[ConflictMissingInMirror])
		assert.Equal(t, "99999999-aaaa-4bbb-8ccc-dddddddddddd", types[ConflictUnknownTask])
	})

	t.Run("missing mirror degrades with warning", func(t *testing.T) {
		t.Parallel()

		_, engine := newTestEngine(t)

		conflicts, warnings, err := engine.DetectConflicts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, conflicts)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "not detectable")
	})
}

func TestResolveConflicts(t *testing.T) {
	t.Parallel()

	t.Run("merge prefer mirror applies edits through the recorder", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		task, err := rec.Create(ctx, ledger.CreateRequest{Title: "ledger title"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "ledger title", "mirror title", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		resolutions, err := engine.ResolveConflicts(ctx, conflicts, StrategyMerge, SourceMirror)
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.Equal(t, "applied_mirror", resolutions[0].Action)

		resolved, err := rec.Store().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "mirror title", resolved.Title)

		// The resolution is a recorded operation, so it is undoable.
		history := rec.History()
		require.NotEmpty(t, history)
		assert.Equal(t, constants.OpResolve, history[0].Type)

		result, err := rec.Undo(ctx)
		require.NoError(t, err)
		assert.Equal(t, constants.OpResolve, result.UndoneType)

		reverted, err := rec.Store().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "ledger title", reverted.Title)

		// Undo only reverts the ledger; callers regenerate the mirror after,
		// and then both sides converge.
		require.NoError(t, engine.WriteMirror(ctx))
		conflictsAfter, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		assert.Empty(t, conflictsAfter)
	})

	t.Run("merge prefer ledger rewrites the mirror", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		_, err := rec.Create(ctx, ledger.CreateRequest{Title: "authoritative"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "authoritative", "scribbled over", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)

		resolutions, err := engine.ResolveConflicts(ctx, conflicts, StrategyMerge, SourceLedger)
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.Equal(t, "kept_ledger", resolutions[0].Action)

		restored, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		assert.Contains(t, string(restored), "authoritative")
		assert.NotContains(t, string(restored), "scribbled over")
	})

	t.Run("unknown task created from mirror", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		_, err := rec.Create(ctx, ledger.CreateRequest{Title: "existing"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "## In Progress",
			"- [ ] 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19: handwritten task\n\n## In Progress", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		require.Equal(t, ConflictUnknownTask, conflicts[0].Type)

		resolutions, err := engine.ResolveConflicts(ctx, conflicts, StrategyMerge, SourceMirror)
		require.NoError(t, err)
		assert.Equal(t, "created_from_mirror", resolutions[0].Action)

		created, err := rec.Store().Get(ctx, "3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19")
		require.NoError(t, err)
		assert.Equal(t, "handwritten task", created.Title)
	})

	t.Run("report strategy changes nothing", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		task, err := rec.Create(ctx, ledger.CreateRequest{Title: "untouched"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		conflicts := []Conflict{{
			TaskID: task.ID, Field: "title", Type: ConflictTitleMismatch,
			LedgerValue: "untouched", MirrorValue: "would change",
		}}
		resolutions, err := engine.ResolveConflicts(ctx, conflicts, StrategyReport, "")
		require.NoError(t, err)
		require.Len(t, resolutions, 1)
		assert.Equal(t, "reported", resolutions[0].Action)

		still, err := rec.Store().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "untouched", still.Title)
	})

	t.Run("newest wins favors the later edit", func(t *testing.T) {
		t.Parallel()

		rec, engine := newTestEngine(t)
		ctx := context.Background()

		task, err := rec.Create(ctx, ledger.CreateRequest{Title: "stale ledger title"})
		require.NoError(t, err)
		require.NoError(t, engine.WriteMirror(ctx))

		// The mirror edit lands after the task's last update, so it wins.
		data, err := os.ReadFile(engine.Path())
		require.NoError(t, err)
		edited := strings.Replace(string(data), "stale ledger title", "fresh mirror title", 1)
		require.NoError(t, os.WriteFile(engine.Path(), []byte(edited), 0o644))
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(engine.Path(), future, future))

		conflicts, _, err := engine.DetectConflicts(ctx)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		resolutions, err := engine.ResolveConflicts(ctx, conflicts, StrategyNewest, "")
		require.NoError(t, err)
		assert.Equal(t, "applied_mirror", resolutions[0].Action)

		resolved, err := rec.Store().Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "fresh mirror title", resolved.Title)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Parallel()

		_, engine := newTestEngine(t)
		_, err := engine.ResolveConflicts(context.Background(), nil, Strategy("overwrite"), SourceLedger)
		require.ErrorIs(t, err, ledgererrors.ErrUnknownStrategy)
	})
}

func TestWatchReportsExternalEdit(t *testing.T) {
	t.Parallel()

	rec, engine := newTestEngine(t)
	ctx := context.Background()

	_, err := rec.Create(ctx, ledger.CreateRequest{Title: "watched task"})
	require.NoError(t, err)
	require.NoError(t, engine.WriteMirror(ctx))

	// A second engine over the same mirror, as a fresh process would have;
	// it has never written and must prime its fingerprint from disk.
	fresh := NewEngine(rec, engine.Path())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan []Conflict, 1)
	done := make(chan error, 1)
	go func() {
		done <- fresh.Watch(watchCtx, 10*time.Millisecond, func(conflicts []Conflict, _ []string) {
			select {
			case changes <- conflicts:
			default:
			}
		})
	}()

	original, err := os.ReadFile(engine.Path())
	require.NoError(t, err)

	// Each rewrite carries a distinct title, so whichever content the watch
	// primed on, the next edit differs from it.
	var conflicts []Conflict
	deadline := time.After(10 * time.Second)
	edits := time.NewTicker(25 * time.Millisecond)
	defer edits.Stop()
	rev := 0
waiting:
	for {
		select {
		case conflicts = <-changes:
			break waiting
		case <-deadline:
			t.Fatal("watch never reported the external edit")
		case <-edits.C:
			rev++
			edited := strings.Replace(string(original), "watched task",
				fmt.Sprintf("edited title %d", rev), 1)
			// Rename keeps the edit atomic under the concurrent poller.
			tmp := engine.Path() + ".edit"
			require.NoError(t, os.WriteFile(tmp, []byte(edited), 0o644))
			require.NoError(t, os.Rename(tmp, engine.Path()))
		}
	}

	require.NotEmpty(t, conflicts)
	assert.Equal(t, ConflictTitleMismatch, conflicts[0].Type)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
