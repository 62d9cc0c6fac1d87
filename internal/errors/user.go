package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Ledger operations
	// ===================
	{
		err: ErrValidation,
		info: ErrorInfo{
			Message: "A field value failed validation.",
			Action:  "Check the field, value, and valid values reported with the error.",
		},
	},
	{
		err: ErrTaskNotFound,
		info: ErrorInfo{
			Message: "The specified task was not found in the ledger.",
			Action:  "Run 'taskledger list' or 'taskledger search' to find the right ID.",
		},
	},
	{
		err: ErrInvalidTaskID,
		info: ErrorInfo{
			Message: "The task ID is not a valid UUID.",
			Action:  "Copy the full ID from 'taskledger list' output.",
		},
	},
	{
		err: ErrDependencyConflict,
		info: ErrorInfo{
			Message: "The task cannot be deleted while other active tasks depend on it.",
			Action:  "Archive or delete the dependent tasks first, or archive this task instead.",
		},
	},
	{
		err: ErrDependencyCycle,
		info: ErrorInfo{
			Message: "The dependency edge would create a cycle.",
			Action:  "Remove the reverse dependency before adding this one.",
		},
	},
	{
		err: ErrDependencyUnknown,
		info: ErrorInfo{
			Message: "A dependency refers to a task that does not exist.",
			Action:  "Create the dependency task first or remove the reference.",
		},
	},
	{
		err: ErrTaskExists,
		info: ErrorInfo{
			Message: "A task with this ID already exists.",
			Action:  "Use 'taskledger update' to modify the existing task.",
		},
	},
	{
		err: ErrArchived,
		info: ErrorInfo{
			Message: "The task is archived.",
			Action:  "Pass --include-archived to list archived tasks.",
		},
	},
	{
		err: ErrProjectPathNotFound,
		info: ErrorInfo{
			Message: "The project storage root does not exist.",
			Action:  "Run 'taskledger init' in your project, or check the --project flag.",
		},
	},

	// ===================
	// Undo & transactions
	// ===================
	{
		err: ErrNothingToUndo,
		info: ErrorInfo{
			Message: "The undo history is empty.",
			Action:  "",
		},
	},
	{
		err: ErrTransactionClosed,
		info: ErrorInfo{
			Message: "The transaction has already been committed or rolled back.",
			Action:  "Begin a new transaction.",
		},
	},

	// ===================
	// Sync & mirror
	// ===================
	{
		err: ErrSyncConflict,
		info: ErrorInfo{
			Message: "The mirror file and the ledger have diverged.",
			Action:  "Run 'taskledger sync --resolve' with a strategy, or edit the mirror back.",
		},
	},
	{
		err: ErrMirrorUnreadable,
		info: ErrorInfo{
			Message: "The mirror file could not be read. Conflict detection is unavailable.",
			Action:  "Check the mirror file permissions; the ledger remains authoritative.",
		},
	},
	{
		err: ErrUnknownStrategy,
		info: ErrorInfo{
			Message: "The conflict resolution strategy is not recognized.",
			Action:  "Use one of: merge, newest, report.",
		},
	},

	// ===================
	// Search
	// ===================
	{
		err: ErrInvalidRegex,
		info: ErrorInfo{
			Message: "The regex query failed to compile.",
			Action:  "Check the pattern syntax, or use --type exact for literal matching.",
		},
	},
	{
		err: ErrUnknownSearchType,
		info: ErrorInfo{
			Message: "The search type is not recognized.",
			Action:  "Use one of: exact, regex, fuzzy, boolean.",
		},
	},

	// ===================
	// Batch
	// ===================
	{
		err: ErrBatchCanceled,
		info: ErrorInfo{
			Message: "The batch operation was canceled before completing.",
			Action:  "Tasks created before cancellation remain in the ledger.",
		},
	},
	{
		err: ErrBatchPartialFailure,
		info: ErrorInfo{
			Message: "The batch completed, but some items failed.",
			Action:  "Review the per-item failures in the output and retry the failed items.",
		},
	},

	// ===================
	// Templates
	// ===================
	{
		err: ErrTemplateNotFound,
		info: ErrorInfo{
			Message: "The specified template does not exist.",
			Action:  "Run 'taskledger template list' to see available templates.",
		},
	},
	{
		err: ErrTemplateParse,
		info: ErrorInfo{
			Message: "The template file has invalid YAML syntax.",
			Action:  "Check the template file for YAML syntax errors.",
		},
	},
	{
		err: ErrInvalidRecurrence,
		info: ErrorInfo{
			Message: "The recurrence pattern could not be parsed.",
			Action:  "Use formats like 'daily@09:00' or 'weekly:mon@17:30'.",
		},
	},

	// ===================
	// Configuration & misc
	// ===================
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Create .taskledger/config.yaml or rely on the built-in defaults.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "Invalid configuration.",
			Action:  "Check .taskledger/config.yaml for out-of-range or unknown values.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "Value is outside the allowed range.",
			Action:  "Check the documentation for valid value ranges.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire the ledger lock. Another taskledger process may be running.",
			Action:  "Wait for the other process to finish, or remove a stale .taskledger/ledger.lock.",
		},
	},
	{
		err: ErrJobNotFound,
		info: ErrorInfo{
			Message: "The background job was not found.",
			Action:  "Run 'taskledger batch status' to see tracked jobs.",
		},
	},
	{
		err: ErrUnsupportedOutputFormat,
		info: ErrorInfo{
			Message: "The requested output format is not supported.",
			Action:  "Use text or json output.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
