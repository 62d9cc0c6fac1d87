package template

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	t.Run("full template", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTemplate(t, dir, "release.yaml", `
name: release
description: cut a release
title: "Release {{version}}"
body: "Ship version {{version}} to {{env}}."
priority: high
tags: [release, ops]
category: ops
checklist:
  - "Tag {{version}}"
  - Update changelog
variables:
  version:
    required: true
  env:
    default: production
recurrence: "weekly:fri@16:00"
`)

		tmpl, err := NewLoader(dir).LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "release", tmpl.Name)
		assert.Equal(t, "high", tmpl.Priority)
		assert.Len(t, tmpl.Checklist, 2)
		assert.True(t, tmpl.Variables["version"].Required)
	})

	t.Run("name defaults to file name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTemplate(t, dir, "standup.yaml", "title: Daily standup\n")

		tmpl, err := NewLoader(dir).LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "standup", tmpl.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewLoader(t.TempDir()).LoadFromFile("nope.yaml")
		require.ErrorIs(t, err, ledgererrors.ErrTemplateNotFound)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTemplate(t, dir, "bad.yaml", "title: [unclosed\n")
		_, err := NewLoader(dir).LoadFromFile(path)
		require.ErrorIs(t, err, ledgererrors.ErrTemplateParse)
	})

	t.Run("invalid priority", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTemplate(t, dir, "bad.yaml", "title: x\npriority: urgent\n")
		_, err := NewLoader(dir).LoadFromFile(path)
		require.ErrorIs(t, err, ledgererrors.ErrValidation)
	})

	t.Run("invalid recurrence", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTemplate(t, dir, "bad.yaml", "title: x\nrecurrence: hourly@09:00\n")
		_, err := NewLoader(dir).LoadFromFile(path)
		require.ErrorIs(t, err, ledgererrors.ErrInvalidRecurrence)
	})
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	t.Run("sorted by name, non-yaml skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeTemplate(t, dir, "zeta.yaml", "title: z\n")
		writeTemplate(t, dir, "alpha.yml", "title: a\n")
		writeTemplate(t, dir, "notes.txt", "not a template")

		templates, err := NewLoader(dir).LoadAll()
		require.NoError(t, err)
		require.Len(t, templates, 2)
		assert.Equal(t, "alpha", templates[0].Name)
		assert.Equal(t, "zeta", templates[1].Name)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		t.Parallel()
		templates, err := NewLoader(filepath.Join(t.TempDir(), "absent")).LoadAll()
		require.NoError(t, err)
		assert.Empty(t, templates)
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry([]*Template{
		{Name: "release", Title: "Release"},
		{Name: "standup", Title: "Standup"},
	})

	got, err := reg.Get("release")
	require.NoError(t, err)
	assert.Equal(t, "Release", got.Title)

	// Mutating the returned clone must not affect the registry.
	got.Title = "changed"
	again, err := reg.Get("release")
	require.NoError(t, err)
	assert.Equal(t, "Release", again.Title)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, ledgererrors.ErrTemplateNotFound)

	names := make([]string, 0, 2)
	for _, tmpl := range reg.List() {
		names = append(names, tmpl.Name)
	}
	assert.Equal(t, []string{"release", "standup"}, names)
}

func TestInstantiate(t *testing.T) {
	t.Parallel()

	base := &Template{
		Name:  "release",
		Title: "Release {{version}}",
		Body:  "Ship {{version}} to {{env}}.",
		Variables: map[string]Variable{
			"version": {Required: true},
			"env":     {Default: "production"},
		},
		Priority:  "high",
		Tags:      []string{"release"},
		Checklist: []string{"Tag {{version}}"},
		Subtasks:  []string{"Notify {{env}} on-call"},
	}

	t.Run("expands variables and defaults", func(t *testing.T) {
		t.Parallel()
		req, err := base.Instantiate(Overrides{Values: map[string]string{"version": "v1.4.0"}, Actor: "drew"})
		require.NoError(t, err)
		assert.Equal(t, "Release v1.4.0", req.Title)
		assert.Equal(t, "Ship v1.4.0 to production.", req.Description)
		assert.Equal(t, constants.TaskPriorityHigh, req.Priority)
		require.Len(t, req.Checklist, 1)
		assert.Equal(t, "Tag v1.4.0", req.Checklist[0].Text)
		require.Len(t, req.Subtasks, 1)
		assert.Equal(t, "Notify production on-call", req.Subtasks[0].Title)
		assert.Equal(t, "drew", req.Actor)
	})

	t.Run("missing required variable", func(t *testing.T) {
		t.Parallel()
		_, err := base.Instantiate(Overrides{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ledgererrors.ErrValidation))
	})

	t.Run("overrides win over template fields", func(t *testing.T) {
		t.Parallel()
		req, err := base.Instantiate(Overrides{
			Values:   map[string]string{"version": "v2.0.0"},
			Title:    "Hotfix release",
			Priority: "critical",
			Assignee: "sam",
			Tags:     []string{"hotfix"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hotfix release", req.Title)
		assert.Equal(t, constants.TaskPriorityCritical, req.Priority)
		assert.Equal(t, "sam", req.Assignee)
		assert.Equal(t, []string{"release", "hotfix"}, req.Tags)
	})

	t.Run("unknown placeholder survives", func(t *testing.T) {
		t.Parallel()
		tmpl := &Template{Name: "x", Title: "Check {{widget}}"}
		req, err := tmpl.Instantiate(Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "Check {{widget}}", req.Title)
	})
}

func TestRecurrence(t *testing.T) {
	t.Parallel()

	t.Run("parse daily", func(t *testing.T) {
		t.Parallel()
		rec, err := ParseRecurrence("daily@09:00")
		require.NoError(t, err)
		assert.Equal(t, IntervalDaily, rec.Interval)
		assert.Equal(t, 9, rec.Hour)
		assert.Equal(t, "daily@09:00", rec.String())
	})

	t.Run("parse weekly", func(t *testing.T) {
		t.Parallel()
		rec, err := ParseRecurrence("weekly:mon@17:30")
		require.NoError(t, err)
		assert.Equal(t, IntervalWeekly, rec.Interval)
		assert.Equal(t, time.Monday, rec.Weekday)
		assert.Equal(t, 30, rec.Minute)
		assert.Equal(t, "weekly:mon@17:30", rec.String())
	})

	t.Run("invalid patterns", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"daily", "hourly@09:00", "weekly:xyz@09:00", "daily@25:00", "daily@09:61", "daily@0900"} {
			_, err := ParseRecurrence(bad)
			assert.ErrorIs(t, err, ledgererrors.ErrInvalidRecurrence, "pattern %q", bad)
		}
	})

	t.Run("daily next", func(t *testing.T) {
		t.Parallel()
		rec := Recurrence{Interval: IntervalDaily, Hour: 9}
		before := time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), rec.Next(before))

		atMark := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC), rec.Next(atMark))
	})

	t.Run("weekly next", func(t *testing.T) {
		t.Parallel()
		rec := Recurrence{Interval: IntervalWeekly, Weekday: time.Monday, Hour: 17, Minute: 30}
		// 2026-08-26 is a Wednesday; next Monday is 2026-08-31.
		wed := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 31, 17, 30, 0, 0, time.UTC), rec.Next(wed))

		// On the mark, roll a full week.
		mon := time.Date(2026, 8, 31, 17, 30, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 9, 7, 17, 30, 0, 0, time.UTC), rec.Next(mon))
	})
}
