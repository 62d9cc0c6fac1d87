// Package errors provides centralized error handling for taskledger.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrValidation indicates that a field value failed validation
	// (empty title, unknown status, unknown priority, etc.).
	ErrValidation = errors.New("validation failed")

	// ErrTaskNotFound indicates that no task exists with the given ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTaskID indicates that a task ID does not have the expected
	// UUID shape at all, as opposed to a well-formed ID that simply does
	// not exist.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrDependencyConflict indicates that a hard delete was blocked because
	// one or more non-archived tasks still depend on the target.
	ErrDependencyConflict = errors.New("dependency conflict")

	// ErrDependencyCycle indicates that a dependency edge would make the
	// dependency relation cyclic (including self-dependencies).
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrDependencyUnknown indicates a dependency edge pointing at a task
	// that does not exist in the ledger.
	ErrDependencyUnknown = errors.New("unknown dependency")

	// ErrProjectPathNotFound indicates the storage root is missing.
	ErrProjectPathNotFound = errors.New("project path not found")

	// ErrSyncConflict indicates an unresolved divergence between the ledger
	// and the mirror file.
	ErrSyncConflict = errors.New("sync conflict")

	// ErrMirrorUnreadable indicates the mirror file could not be read.
	// Detection degrades to "no conflicts detectable" when this occurs.
	ErrMirrorUnreadable = errors.New("mirror unreadable")

	// ErrTaskExists indicates an attempt to create a task whose ID is
	// already present in the ledger.
	ErrTaskExists = errors.New("task already exists")

	// ErrNothingToUndo indicates the undo history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrTransactionClosed indicates an operation was issued against a
	// transaction that has already been committed or rolled back.
	ErrTransactionClosed = errors.New("transaction already closed")

	// ErrBatchCanceled indicates a batch operation was canceled between chunks.
	ErrBatchCanceled = errors.New("batch canceled")

	// ErrBatchPartialFailure indicates a batch completed with one or more
	// failed items. The failures are collected, never silently dropped.
	ErrBatchPartialFailure = errors.New("batch completed with failures")

	// ErrInvalidRegex indicates a regex search query failed to compile.
	ErrInvalidRegex = errors.New("invalid regex query")

	// ErrUnknownSearchType indicates an unrecognized search mode.
	ErrUnknownSearchType = errors.New("unknown search type")

	// ErrUnknownStrategy indicates an unrecognized conflict resolution strategy.
	ErrUnknownStrategy = errors.New("unknown conflict strategy")

	// ErrCommentNotFound indicates no comment exists with the given ID.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrTemplateNotFound indicates the requested task template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateParse indicates a template file has invalid YAML syntax.
	ErrTemplateParse = errors.New("template parse error")

	// ErrInvalidRecurrence indicates a recurrence pattern that cannot be parsed.
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")

	// ErrJobNotFound indicates the async status tracker knows no job with
	// the given ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLockTimeout indicates the ledger lock could not be acquired within
	// the timeout period. Another taskledger process likely holds it.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrLedgerClosed indicates an operation was issued against a closed store.
	ErrLedgerClosed = errors.New("ledger closed")

	// ErrUnsupportedOutputFormat indicates that an unsupported output format
	// was specified.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")

	// ErrArchived indicates an operation not permitted on an archived task.
	ErrArchived = errors.New("task is archived")
)
