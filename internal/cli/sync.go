package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/mirror"
	"github.com/taskledger/taskledger/internal/tui"
)

// syncFlags holds the flags for the sync command.
type syncFlags struct {
	resolve  bool
	strategy string
	prefer   string
	watch    bool
	interval time.Duration
}

// newSyncCmd creates the sync command.
func newSyncCmd(flags *GlobalFlags) *cobra.Command {
	sf := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Detect and resolve conflicts with the mirror file",
		Long: `Compare the ledger against the TASKS.md mirror and report differences.

With --resolve, conflicts are resolved using the configured strategy:
  merge    the preferred side (--prefer ledger|mirror) wins per field
  newest   the side edited most recently wins
  report   detect only, change nothing

Tasks present in the ledger but missing from the mirror are always only
reported; sync never deletes tasks. With --watch, the mirror is polled and
conflicts are reported (and resolved, when auto-resolve is configured) on
every external edit.

Examples:
  taskledger sync
  taskledger sync --resolve --strategy merge --prefer mirror
  taskledger sync --watch --interval 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			strategy := mirror.Strategy(a.cfg.Sync.Strategy)
			if sf.strategy != "" {
				strategy = mirror.Strategy(sf.strategy)
			}
			prefer := mirror.Source(a.cfg.Sync.PreferSource)
			if sf.prefer != "" {
				prefer = mirror.Source(sf.prefer)
			}
			interval := a.cfg.Sync.Interval
			if sf.interval > 0 {
				interval = sf.interval
			}
			resolve := sf.resolve || a.cfg.Sync.AutoResolve

			if sf.watch {
				a.out.Info(fmt.Sprintf("watching %s every %s (press Ctrl-C to stop)",
					a.cfg.Sync.MirrorFile, interval))
				return a.sync.Watch(ctx, interval, func(conflicts []mirror.Conflict, warnings []string) {
					reportSyncPass(cmd.OutOrStdout(), a, conflicts, warnings, flags.Output)
					if resolve && len(conflicts) > 0 {
						resolutions, err := a.sync.ResolveConflicts(ctx, conflicts, strategy, prefer)
						if err != nil {
							a.out.Error(err)
							return
						}
						reportResolutions(cmd.OutOrStdout(), a, resolutions, flags.Output)
					}
				})
			}

			conflicts, warnings, err := a.sync.DetectConflicts(ctx)
			if err != nil {
				return err
			}
			reportSyncPass(cmd.OutOrStdout(), a, conflicts, warnings, flags.Output)

			if resolve && len(conflicts) > 0 {
				resolutions, err := a.sync.ResolveConflicts(ctx, conflicts, strategy, prefer)
				if err != nil {
					return err
				}
				reportResolutions(cmd.OutOrStdout(), a, resolutions, flags.Output)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sf.resolve, "resolve", false, "resolve detected conflicts")
	cmd.Flags().StringVar(&sf.strategy, "strategy", "", "conflict strategy (merge|newest|report)")
	cmd.Flags().StringVar(&sf.prefer, "prefer", "", "preferred side for merge (ledger|mirror)")
	cmd.Flags().BoolVar(&sf.watch, "watch", false, "poll the mirror for external edits")
	cmd.Flags().DurationVar(&sf.interval, "interval", 0, "watch polling interval")

	return cmd
}

// reportSyncPass prints the outcome of one detection pass.
func reportSyncPass(w io.Writer, a *app, conflicts []mirror.Conflict, warnings []string, format string) {
	if format == OutputJSON {
		_ = a.out.JSON(map[string]any{
			"conflicts": conflicts,
			"warnings":  warnings,
		})
		return
	}

	for _, warning := range warnings {
		a.out.Warning(warning)
	}
	if len(conflicts) == 0 {
		a.out.Success("ledger and mirror are in sync")
		return
	}
	for _, conflict := range conflicts {
		_, _ = fmt.Fprintf(w, "conflict %-22s task %s field %s (ledger %q, mirror %q)\n",
			conflict.Type, tui.ShortID(conflict.TaskID), conflict.Field,
			conflict.LedgerValue, conflict.MirrorValue)
	}
	a.out.Warning(fmt.Sprintf("%d conflict(s) detected", len(conflicts)))
}

// reportResolutions prints the outcome of a resolve pass.
func reportResolutions(w io.Writer, a *app, resolutions []mirror.Resolution, format string) {
	if format == OutputJSON {
		_ = a.out.JSON(resolutions)
		return
	}
	for _, resolution := range resolutions {
		_, _ = fmt.Fprintf(w, "%-20s task %s field %s\n",
			resolution.Action, tui.ShortID(resolution.Conflict.TaskID), resolution.Conflict.Field)
	}
	a.out.Success(fmt.Sprintf("%d conflict(s) processed", len(resolutions)))
}
