package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/tui"
)

// newDeleteCmd creates the delete command.
func newDeleteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task permanently",
		Long: `Delete a task from the ledger. Deletion is refused while other
non-archived tasks depend on it; the error lists the blocking tasks.
The deletion can be undone while it remains in the undo history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.rec.Delete(ctx, args[0], a.actor)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("deleted task %s: %s", tui.ShortID(task.ID), task.Title))
			return nil
		},
	}
}
