package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/tui"
)

// newArchiveCmd creates the archive command.
func newArchiveCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task",
		Long: `Archive a task. Archived tasks drop out of listings and the mirror
file but stay in the ledger and remain addressable by ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.rec.Archive(ctx, args[0], a.actor)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("archived task %s: %s", tui.ShortID(task.ID), task.Title))
			return nil
		},
	}
}
