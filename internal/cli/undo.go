package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/tui"
)

// newUndoCmd creates the undo command.
func newUndoCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent operation",
		Long: `Revert the most recent mutation recorded in the undo history.
Undoing a create removes the task; undoing an update, archive, or delete
restores the prior snapshot. The undo itself is recorded in the audit
trail but does not enter the undo history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.rec.Undo(ctx)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(result)
			}
			a.out.Success(fmt.Sprintf("undid %s on task %s",
				result.UndoneType, tui.ShortID(result.TaskID)))
			for field, diff := range result.RestoredFields {
				a.out.Info(fmt.Sprintf("  %s: %s -> %s", field, diff.From, diff.To))
			}
			return nil
		},
	}
}
