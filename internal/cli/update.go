package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tui"
)

// updateFlags holds the flags for the update command.
type updateFlags struct {
	title       string
	description string
	status      string
	priority    string
	category    string
	assignee    string
	due         string
	clearDue    bool
	tags        []string
	dependsOn   []string
}

// newUpdateCmd creates the update command.
func newUpdateCmd(flags *GlobalFlags) *cobra.Command {
	uf := &updateFlags{}

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update fields of a task",
		Long: `Apply a partial update to a task. Only the supplied flags change;
everything else is left untouched. Each update bumps the task version and
appends a change-log entry with per-field before/after values.

Examples:
  taskledger update 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19 --status in_progress
  taskledger update 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19 --due 2026-10-01 --assignee sam
  taskledger update 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19 --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			update := ledger.TaskUpdate{
				ClearDueDate: uf.clearDue,
				Actor:        a.actor,
			}
			if cmd.Flags().Changed("title") {
				update.Title = &uf.title
			}
			if cmd.Flags().Changed("description") {
				update.Description = &uf.description
			}
			if cmd.Flags().Changed("status") {
				status := constants.TaskStatus(uf.status)
				update.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				priority := constants.TaskPriority(uf.priority)
				update.Priority = &priority
			}
			if cmd.Flags().Changed("category") {
				update.Category = &uf.category
			}
			if cmd.Flags().Changed("assignee") {
				update.Assignee = &uf.assignee
			}
			if uf.due != "" {
				due, err := parseDueDate(uf.due)
				if err != nil {
					return err
				}
				update.DueDate = &due
			}
			if cmd.Flags().Changed("tags") {
				update.Tags = uf.tags
			}
			if cmd.Flags().Changed("depends-on") {
				update.Dependencies = uf.dependsOn
			}

			if update.IsEmpty() {
				return fmt.Errorf("%w: no fields to update", ledgererrors.ErrInvalidArgument)
			}

			task, err := a.rec.Update(ctx, args[0], update)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("updated task %s (v%d)", tui.ShortID(task.ID), task.Version))
			return nil
		},
	}

	cmd.Flags().StringVar(&uf.title, "title", "", "new title")
	cmd.Flags().StringVarP(&uf.description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&uf.status, "status", "", "new status (pending|in_progress|completed|blocked)")
	cmd.Flags().StringVar(&uf.priority, "priority", "", "new priority (low|medium|high|critical)")
	cmd.Flags().StringVarP(&uf.category, "category", "c", "", "new category")
	cmd.Flags().StringVarP(&uf.assignee, "assignee", "a", "", "new assignee")
	cmd.Flags().StringVar(&uf.due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&uf.clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringSliceVarP(&uf.tags, "tags", "t", nil, "replace tags (comma-separated)")
	cmd.Flags().StringSliceVar(&uf.dependsOn, "depends-on", nil, "replace dependencies (comma-separated task IDs)")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	return cmd
}
