package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
)

// seedStore creates a store with a small recognizable dataset.
func seedStore(t *testing.T) (*ledger.Store, map[string]string) {
	t.Helper()

	store, err := ledger.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	ids := make(map[string]string)

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	seeds := []ledger.CreateRequest{
		{
			Title:       "Deploy ArgoCD to production",
			Description: "roll out the new helm chart",
			Tags:        []string{"infra", "deploy"},
			Assignee:    "drew",
			Priority:    constants.TaskPriorityHigh,
			DueDate:     &due,
		},
		{
			Title:    "Write API documentation",
			Category: "docs",
			Assignee: "sam",
		},
		{
			Title:       "Fix login timeout bug",
			Description: "sessions expire after 5 minutes in production",
			Tags:        []string{"bug"},
			Status:      constants.TaskStatusInProgress,
		},
	}
	for _, req := range seeds {
		task, err := store.Create(ctx, req)
		require.NoError(t, err)
		ids[req.Title] = task.ID
	}
	return store, ids
}

func TestSearchExact(t *testing.T) {
	t.Parallel()

	store, ids := seedStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	t.Run("case-folded substring", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "argocd", Type: TypeExact})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Deploy ArgoCD to production"], matches[0].Task.ID)
		assert.Equal(t, 1.0, matches[0].Score)
		assert.Contains(t, matches[0].MatchedFields, "title")
	})

	t.Run("matches across fields", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "production", Type: TypeExact})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("field restriction", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{
			Query:  "production",
			Type:   TypeExact,
			Fields: []string{"description"},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Fix login timeout bug"], matches[0].Task.ID)
		assert.Equal(t, []string{"description"}, matches[0].MatchedFields)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := engine.Search(ctx, Request{Query: "x", Fields: []string{"summary"}})
		require.ErrorIs(t, err, ledgererrors.ErrValidation)
	})

	t.Run("empty query with filters matches all", func(t *testing.T) {
		status := constants.TaskStatusInProgress
		matches, err := engine.Search(ctx, Request{
			Type:    TypeExact,
			Filters: Filters{Status: &status},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Fix login timeout bug"], matches[0].Task.ID)
	})

	t.Run("index survives store mutations", func(t *testing.T) {
		task, err := store.Create(ctx, ledger.CreateRequest{Title: "Upgrade argocd applicationsets"})
		require.NoError(t, err)

		matches, err := engine.Search(ctx, Request{Query: "argocd", Type: TypeExact})
		require.NoError(t, err)
		assert.Len(t, matches, 2)

		_, err = store.Delete(ctx, task.ID)
		require.NoError(t, err)

		matches, err = engine.Search(ctx, Request{Query: "argocd", Type: TypeExact})
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestSearchRegex(t *testing.T) {
	t.Parallel()

	store, ids := seedStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	matches, err := engine.Search(ctx, Request{Query: `(?i)fix .* bug`, Type: TypeRegex})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, ids["Fix login timeout bug"], matches[0].Task.ID)

	_, err = engine.Search(ctx, Request{Query: `([`, Type: TypeRegex})
	require.ErrorIs(t, err, ledgererrors.ErrInvalidRegex)

	// Regex defaults to title and description; structured fields only match
	// under an explicit restriction.
	matches, err = engine.Search(ctx, Request{Query: `^drew$`, Type: TypeRegex})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = engine.Search(ctx, Request{
		Query:  `^drew$`,
		Type:   TypeRegex,
		Fields: []string{"assignee"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, ids["Deploy ArgoCD to production"], matches[0].Task.ID)
}

func TestSearchFuzzy(t *testing.T) {
	t.Parallel()

	store, ids := seedStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	t.Run("misspelled multiword query", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "argcd prodction", Type: TypeFuzzy})
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, ids["Deploy ArgoCD to production"], matches[0].Task.ID)
		assert.Greater(t, matches[0].Score, 0.7)
	})

	t.Run("transposition", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "documenattion", Type: TypeFuzzy})
		require.NoError(t, err)
		require.NotEmpty(t, matches)
		assert.Equal(t, ids["Write API documentation"], matches[0].Task.ID)
	})

	t.Run("garbage stays out", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "zzzzqqqq", Type: TypeFuzzy})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestSearchBoolean(t *testing.T) {
	t.Parallel()

	store, ids := seedStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	t.Run("AND requires all terms", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "login AND production", Type: TypeBoolean})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Fix login timeout bug"], matches[0].Task.ID)
	})

	t.Run("OR matches either side", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "helm OR documentation", Type: TypeBoolean})
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("no group matches", func(t *testing.T) {
		matches, err := engine.Search(ctx, Request{Query: "helm AND documentation", Type: TypeBoolean})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestSearchFilters(t *testing.T) {
	t.Parallel()

	store, ids := seedStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	t.Run("due date range is inclusive", func(t *testing.T) {
		from := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
		matches, err := engine.Search(ctx, Request{
			Type:    TypeExact,
			Filters: Filters{DueAfter: &from, DueBefore: &to},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Deploy ArgoCD to production"], matches[0].Task.ID)
	})

	t.Run("due date range excludes earlier tasks", func(t *testing.T) {
		from := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
		matches, err := engine.Search(ctx, Request{
			Type:    TypeExact,
			Filters: Filters{DueAfter: &from},
		})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("tag and priority filters", func(t *testing.T) {
		high := constants.TaskPriorityHigh
		matches, err := engine.Search(ctx, Request{
			Type:    TypeExact,
			Filters: Filters{Tags: []string{"infra"}, Priority: &high},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, ids["Deploy ArgoCD to production"], matches[0].Task.ID)
	})

	t.Run("archived excluded unless requested", func(t *testing.T) {
		archived, err := store.Create(ctx, ledger.CreateRequest{Title: "retired production playbook"})
		require.NoError(t, err)
		_, err = store.Archive(ctx, archived.ID, "")
		require.NoError(t, err)

		matches, err := engine.Search(ctx, Request{Query: "retired", Type: TypeExact})
		require.NoError(t, err)
		assert.Empty(t, matches)

		matches, err = engine.Search(ctx, Request{
			Query:   "retired",
			Type:    TypeExact,
			Filters: Filters{IncludeArchived: true},
		})
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("unknown search type", func(t *testing.T) {
		_, err := engine.Search(ctx, Request{Query: "x", Type: Type("semantic")})
		require.ErrorIs(t, err, ledgererrors.ErrUnknownSearchType)
	})
}
