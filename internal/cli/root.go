package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// This function MUST only be called after the root command's
// PersistentPreRunE has executed. Calling it before initialization will
// return a zero-value logger that discards all log output.
//
// This function is safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates and returns the root command for the taskledger CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "taskledger",
		Short: "taskledger - a durable task ledger with a human-editable mirror",
		Long: `taskledger keeps a project's tasks in a durable JSON ledger under
.taskledger/ and mirrors them to a human-editable TASKS.md at the project
root. The ledger is canonical; edits to the mirror are detected and
reconciled through configurable conflict strategies.

Features:
  • Full task lifecycle with change logs, comments, and undo
  • Bidirectional TASKS.md sync with conflict detection
  • Exact, regex, fuzzy, and boolean search
  • Bounded-concurrency batch import and archive
  • Reusable YAML task templates with recurrence rules`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: output format %q must be one of %v",
					ledgererrors.ErrInvalidArgument, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		// SilenceUsage prevents printing usage on error
		// (we handle our own error messages)
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	cmd.AddCommand(
		newInitCmd(flags),
		newCreateCmd(flags),
		newListCmd(flags),
		newShowCmd(flags),
		newUpdateCmd(flags),
		newArchiveCmd(flags),
		newDeleteCmd(flags),
		newCommentCmd(flags),
		newUndoCmd(flags),
		newHistoryCmd(flags),
		newSearchCmd(flags),
		newSyncCmd(flags),
		newMirrorCmd(flags),
		newBatchCmd(flags),
		newTemplateCmd(flags),
		newPromptCmd(flags),
		newConfigCmd(flags),
	)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)
	return cmd.ExecuteContext(ctx)
}
