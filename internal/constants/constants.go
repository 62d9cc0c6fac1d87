// Package constants provides centralized constant values used throughout taskledger.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by taskledger for state persistence.
const (
	// LedgerHome is the hidden directory name where taskledger stores all
	// project-local data. It is created at the project root.
	LedgerHome = ".taskledger"

	// GlobalHome is the hidden directory name under the user's home directory
	// where taskledger stores global data (logs, global config).
	GlobalHome = ".taskledger"

	// TasksDir is the directory name under LedgerHome where task JSON files live.
	TasksDir = "tasks"

	// TemplatesDir is the directory name under LedgerHome for task templates.
	TemplatesDir = "templates"

	// LogsDir is the directory name under GlobalHome where log files are stored.
	LogsDir = "logs"

	// ConfigFileName is the name of the YAML configuration file, looked up both
	// under LedgerHome (project) and GlobalHome (global).
	ConfigFileName = "config.yaml"

	// AuditFileName is the append-only JSON-lines audit trail under LedgerHome.
	AuditFileName = "audit.jsonl"

	// LockFileName is the ledger lock file under LedgerHome. An exclusive flock
	// on this file enforces the single-writer-process rule.
	LockFileName = "ledger.lock"

	// MirrorFileName is the default human-editable mirror file, written at the
	// project root (not under LedgerHome) so people actually see and edit it.
	MirrorFileName = "TASKS.md"

	// CLILogFileName is the global rotating log file name.
	CLILogFileName = "taskledger.log"
)

// Defaults for configurable engine behavior. Each of these can be overridden
// via config file, environment variable, or CLI flag (see internal/config).
const (
	// DefaultUndoDepth is the default number of operation records retained for undo.
	DefaultUndoDepth = 50

	// DefaultPageSize is the default page size for task listings.
	DefaultPageSize = 25

	// DefaultBatchSize is the default chunk size for batch operations.
	DefaultBatchSize = 50

	// DefaultMaxConcurrency is the default number of chunks processed in parallel
	// by the batch controller.
	DefaultMaxConcurrency = 4

	// DefaultBatchCeiling is the soft time limit for a single batch operation.
	// Batch creation of 1,000+ tasks is an expected workload and must not block
	// the process indefinitely.
	DefaultBatchCeiling = 30 * time.Second

	// DefaultSyncInterval is the default polling interval for mirror watch mode.
	DefaultSyncInterval = 2 * time.Second

	// MaxPageSize bounds a single listing page.
	MaxPageSize = 500

	// MaxTitleLength bounds task titles.
	MaxTitleLength = 500
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before the log is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the maximum number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum number of days to retain rotated log files.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Schema version constants for data migration support.
const (
	// TaskSchemaVersion is the current version of the task JSON schema.
	// This enables forward-compatible schema migrations.
	TaskSchemaVersion = 1
)
