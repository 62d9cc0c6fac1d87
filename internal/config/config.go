// Package config provides configuration management for taskledger with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (TASKLEDGER_* prefix)
//  3. Project config (.taskledger/config.yaml)
//  4. Global config (~/.taskledger/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for taskledger.
// Every recognized option and its effect is enumerated here; unknown keys in
// config files are ignored by viper, out-of-range values are rejected once
// at construction by Validate.
type Config struct {
	// Ledger contains settings for the task store itself.
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Undo contains settings for the operation recorder and undo history.
	Undo UndoConfig `yaml:"undo" mapstructure:"undo"`

	// Batch contains settings for the bounded-concurrency batch controller.
	Batch BatchConfig `yaml:"batch" mapstructure:"batch"`

	// Sync contains settings for the mirror sync and conflict engine.
	Sync SyncConfig `yaml:"sync" mapstructure:"sync"`
}

// LedgerConfig contains settings for the task store.
type LedgerConfig struct {
	// Actor is recorded in change-log entries and the audit trail when no
	// explicit actor is supplied per call.
	// Default: "local"
	Actor string `yaml:"actor" mapstructure:"actor"`

	// PageSize is the default page size for task listings.
	// Default: 25, Valid range: 1-500
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// UndoConfig contains settings for the operation recorder.
type UndoConfig struct {
	// Depth is the number of operation records retained for undo.
	// The oldest record is evicted when the history exceeds this depth.
	// Default: 50, Valid range: 1-10000
	Depth int `yaml:"depth" mapstructure:"depth"`
}

// BatchConfig contains settings for batch operations.
type BatchConfig struct {
	// Size is the number of items per chunk.
	// Default: 50, Valid range: 1-1000
	Size int `yaml:"size" mapstructure:"size"`

	// MaxConcurrency is the number of chunks processed in parallel.
	// Default: 4, Valid range: 1-64
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// Ceiling is the soft time limit for a single batch operation. A batch
	// exceeding it is canceled between chunks rather than blocking the
	// process indefinitely.
	// Default: 30s
	Ceiling time.Duration `yaml:"ceiling" mapstructure:"ceiling"`
}

// SyncConfig contains settings for the mirror sync engine.
type SyncConfig struct {
	// MirrorFile is the mirror filename, relative to the project root.
	// Default: "TASKS.md"
	MirrorFile string `yaml:"mirror_file" mapstructure:"mirror_file"`

	// Strategy is the default conflict resolution strategy:
	// "merge" (prefer a configured source), "newest" (most recent edit wins),
	// or "report" (detect only, change nothing).
	// Default: "report"
	Strategy string `yaml:"strategy" mapstructure:"strategy"`

	// PreferSource is the side preferred by the merge strategy:
	// "ledger" or "mirror".
	// Default: "ledger"
	PreferSource string `yaml:"prefer_source" mapstructure:"prefer_source"`

	// AutoResolve applies the configured strategy automatically on each
	// detection pass instead of only reporting conflicts.
	// Default: false
	AutoResolve bool `yaml:"auto_resolve" mapstructure:"auto_resolve"`

	// Interval is the polling interval for watch mode.
	// Default: 2s, minimum: 100ms
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Strategy name constants recognized by SyncConfig.Strategy.
const (
	// StrategyMerge applies the preferred side's value and writes back.
	StrategyMerge = "merge"
	// StrategyNewest compares edit timestamps and takes the more recent side.
	StrategyNewest = "newest"
	// StrategyReport detects and reports conflicts without changing anything.
	StrategyReport = "report"
)

// ValidStrategies returns the recognized conflict strategy names.
func ValidStrategies() []string {
	return []string{StrategyMerge, StrategyNewest, StrategyReport}
}

// Source name constants recognized by SyncConfig.PreferSource.
const (
	// SourceLedger prefers the structured ledger's value.
	SourceLedger = "ledger"
	// SourceMirror prefers the mirror file's value.
	SourceMirror = "mirror"
)

// ValidSources returns the recognized merge sources.
func ValidSources() []string {
	return []string{SourceLedger, SourceMirror}
}
