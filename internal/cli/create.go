package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/domain"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tui"
)

// createFlags holds the flags for the create command.
type createFlags struct {
	description string
	status      string
	priority    string
	tags        []string
	category    string
	assignee    string
	due         string
	dependsOn   []string
	subtasks    []string
	checklist   []string
}

// newCreateCmd creates the create command.
func newCreateCmd(flags *GlobalFlags) *cobra.Command {
	cf := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new task",
		Long: `Create a new task in the ledger.

The title is required; everything else defaults (status pending, priority
medium). The mirror file is regenerated after the task is stored.

Examples:
  taskledger create "Deploy ArgoCD to production" --priority high --tags infra,deploy
  taskledger create "Fix login timeout" --assignee drew --due 2026-09-15 \
    --depends-on 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			req := ledger.CreateRequest{
				Title:        args[0],
				Description:  cf.description,
				Status:       constants.TaskStatus(cf.status),
				Priority:     constants.TaskPriority(cf.priority),
				Tags:         cf.tags,
				Category:     cf.category,
				Assignee:     cf.assignee,
				Dependencies: cf.dependsOn,
				Actor:        a.actor,
			}
			if cf.due != "" {
				due, err := parseDueDate(cf.due)
				if err != nil {
					return err
				}
				req.DueDate = &due
			}
			for _, title := range cf.subtasks {
				req.Subtasks = append(req.Subtasks, domain.Subtask{Title: title})
			}
			for _, text := range cf.checklist {
				req.Checklist = append(req.Checklist, domain.ChecklistItem{Text: text})
			}

			task, err := a.rec.Create(ctx, req)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("created task %s: %s", tui.ShortID(task.ID), task.Title))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cf.description, "description", "d", "", "detailed task description")
	cmd.Flags().StringVar(&cf.status, "status", "", "initial status (pending|in_progress|completed|blocked)")
	cmd.Flags().StringVar(&cf.priority, "priority", "", "priority (low|medium|high|critical)")
	cmd.Flags().StringSliceVarP(&cf.tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().StringVarP(&cf.category, "category", "c", "", "task category")
	cmd.Flags().StringVarP(&cf.assignee, "assignee", "a", "", "assignee")
	cmd.Flags().StringVar(&cf.due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&cf.dependsOn, "depends-on", nil, "task IDs this task depends on")
	cmd.Flags().StringArrayVar(&cf.subtasks, "subtask", nil, "subtask title (repeatable)")
	cmd.Flags().StringArrayVar(&cf.checklist, "check", nil, "checklist item (repeatable)")

	return cmd
}

// parseDueDate parses a YYYY-MM-DD due date as midnight UTC.
func parseDueDate(s string) (time.Time, error) {
	due, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: due date %q must be YYYY-MM-DD",
			ledgererrors.ErrInvalidArgument, s)
	}
	return due.UTC(), nil
}
