package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tui"
)

// listFlags holds the flags for the list command.
type listFlags struct {
	page     int
	pageSize int
	status   string
	priority string
	tag      string
	assignee string
	category string
	archived bool
}

// newListCmd creates the list command.
func newListCmd(flags *GlobalFlags) *cobra.Command {
	lf := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks in insertion order with optional filters and pagination.

Examples:
  taskledger list
  taskledger list --status in_progress --priority high
  taskledger list --tag infra --page 2 --page-size 50
  taskledger list --archived`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			req := ledger.ListRequest{
				Page:            lf.page,
				PageSize:        lf.pageSize,
				IncludeArchived: lf.archived,
				Tag:             lf.tag,
				Assignee:        lf.assignee,
				Category:        lf.category,
			}
			if req.PageSize == 0 {
				req.PageSize = a.cfg.Ledger.PageSize
			}
			if lf.status != "" {
				status := constants.TaskStatus(lf.status)
				req.Status = &status
			}
			if lf.priority != "" {
				priority := constants.TaskPriority(lf.priority)
				req.Priority = &priority
			}

			result, err := a.store.List(ctx, req)
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(result)
			}

			tui.CheckNoColor()
			if len(result.Tasks) == 0 {
				a.out.Info("no tasks found")
				return nil
			}
			tui.WriteTaskTable(cmd.OutOrStdout(), result.Tasks)
			a.out.Info(fmt.Sprintf("page %d, showing %d of %d task(s)",
				result.Page, len(result.Tasks), result.Total))
			return nil
		},
	}

	cmd.Flags().IntVar(&lf.page, "page", 0, "page number (1-based)")
	cmd.Flags().IntVar(&lf.pageSize, "page-size", 0, "tasks per page")
	cmd.Flags().StringVar(&lf.status, "status", "", "filter by status")
	cmd.Flags().StringVar(&lf.priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&lf.tag, "tag", "", "filter by tag")
	cmd.Flags().StringVar(&lf.assignee, "assignee", "", "filter by assignee")
	cmd.Flags().StringVar(&lf.category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&lf.archived, "archived", false, "include archived tasks")

	return cmd
}
