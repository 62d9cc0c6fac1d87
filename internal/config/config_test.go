package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "local", cfg.Ledger.Actor)
	assert.Equal(t, 50, cfg.Undo.Depth)
	assert.Equal(t, 50, cfg.Batch.Size)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Batch.Ceiling)
	assert.Equal(t, "TASKS.md", cfg.Sync.MirrorFile)
	assert.Equal(t, StrategyReport, cfg.Sync.Strategy)
	assert.Equal(t, SourceLedger, cfg.Sync.PreferSource)
	assert.False(t, cfg.Sync.AutoResolve)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("nil config rejected", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ledgererrors.ErrConfigInvalid)
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty actor", func(c *Config) { c.Ledger.Actor = "" }},
			{"zero page size", func(c *Config) { c.Ledger.PageSize = 0 }},
			{"huge page size", func(c *Config) { c.Ledger.PageSize = 10000 }},
			{"zero undo depth", func(c *Config) { c.Undo.Depth = 0 }},
			{"zero batch size", func(c *Config) { c.Batch.Size = 0 }},
			{"huge concurrency", func(c *Config) { c.Batch.MaxConcurrency = 1000 }},
			{"zero ceiling", func(c *Config) { c.Batch.Ceiling = 0 }},
			{"empty mirror file", func(c *Config) { c.Sync.MirrorFile = "" }},
			{"unknown strategy", func(c *Config) { c.Sync.Strategy = "coin_flip" }},
			{"unknown source", func(c *Config) { c.Sync.PreferSource = "git" }},
			{"tiny interval", func(c *Config) { c.Sync.Interval = time.Millisecond }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cfg := DefaultConfig()
				tc.mutate(cfg)
				assert.ErrorIs(t, Validate(cfg), ledgererrors.ErrConfigInvalid)
			})
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults when no config files exist", func(t *testing.T) {
		projectRoot := t.TempDir()

		cfg, err := Load(projectRoot)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Batch.Size, cfg.Batch.Size)
	})

	t.Run("project config overrides defaults", func(t *testing.T) {
		projectRoot := t.TempDir()
		cfgDir := filepath.Join(projectRoot, ".taskledger")
		require.NoError(t, os.MkdirAll(cfgDir, 0o750))

		yaml := "undo:\n  depth: 7\nsync:\n  strategy: newest\n  interval: 500ms\n"
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(yaml), 0o600))

		cfg, err := Load(projectRoot)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Undo.Depth)
		assert.Equal(t, StrategyNewest, cfg.Sync.Strategy)
		assert.Equal(t, 500*time.Millisecond, cfg.Sync.Interval)
		// Untouched keys keep defaults.
		assert.Equal(t, DefaultConfig().Batch.Size, cfg.Batch.Size)
	})

	t.Run("invalid project config rejected", func(t *testing.T) {
		projectRoot := t.TempDir()
		cfgDir := filepath.Join(projectRoot, ".taskledger")
		require.NoError(t, os.MkdirAll(cfgDir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"),
			[]byte("batch:\n  size: -1\n"), 0o600))

		_, err := Load(projectRoot)
		assert.ErrorIs(t, err, ledgererrors.ErrConfigInvalid)
	})

	t.Run("environment variable overrides file", func(t *testing.T) {
		projectRoot := t.TempDir()
		t.Setenv("TASKLEDGER_UNDO_DEPTH", "12")

		cfg, err := Load(projectRoot)
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.Undo.Depth)
	})
}

func TestLoadWithOverrides(t *testing.T) {
	t.Run("flag overrides beat everything", func(t *testing.T) {
		projectRoot := t.TempDir()
		cfgDir := filepath.Join(projectRoot, ".taskledger")
		require.NoError(t, os.MkdirAll(cfgDir, 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"),
			[]byte("batch:\n  size: 100\n"), 0o600))

		cfg, err := LoadWithOverrides(projectRoot, Overrides{
			Actor:     "ci-bot",
			BatchSize: 10,
			Strategy:  StrategyMerge,
		})
		require.NoError(t, err)
		assert.Equal(t, "ci-bot", cfg.Ledger.Actor)
		assert.Equal(t, 10, cfg.Batch.Size)
		assert.Equal(t, StrategyMerge, cfg.Sync.Strategy)
	})

	t.Run("invalid override rejected", func(t *testing.T) {
		_, err := LoadWithOverrides(t.TempDir(), Overrides{Strategy: "guess"})
		assert.ErrorIs(t, err, ledgererrors.ErrConfigInvalid)
	})
}
