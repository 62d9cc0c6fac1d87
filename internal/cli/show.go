package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/clock"
	"github.com/taskledger/taskledger/internal/domain"
	"github.com/taskledger/taskledger/internal/tui"
)

// newShowCmd creates the show command.
func newShowCmd(flags *GlobalFlags) *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}

			blockedBy, err := a.store.BlockedBy(ctx, task.ID)
			if err != nil {
				return err
			}

			tui.CheckNoColor()
			writeTaskDetail(cmd.OutOrStdout(), task, blockedBy, a.store.Clock(), withHistory)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "include the task's change log")
	return cmd
}

// writeTaskDetail renders a full task view for terminal output.
func writeTaskDetail(w io.Writer, task *domain.Task, blockedBy []string, clk clock.Clock, withHistory bool) {
	_, _ = fmt.Fprintln(w, tui.StyleBold.Render(task.Title))
	_, _ = fmt.Fprintf(w, "id:        %s\n", task.ID)
	_, _ = fmt.Fprintf(w, "status:    %s\n", tui.StatusBadge(task.Status))
	_, _ = fmt.Fprintf(w, "priority:  %s\n", tui.PriorityBadge(task.Priority))
	if task.Assignee != "" {
		_, _ = fmt.Fprintf(w, "assignee:  %s\n", task.Assignee)
	}
	if task.Category != "" {
		_, _ = fmt.Fprintf(w, "category:  %s\n", task.Category)
	}
	if len(task.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "tags:      %s\n", strings.Join(task.Tags, ", "))
	}
	_, _ = fmt.Fprintf(w, "due:       %s\n", tui.DueLabel(task.DueDate, clk))
	_, _ = fmt.Fprintf(w, "updated:   %s (v%d)\n", tui.RelativeTimeWith(task.UpdatedAt, clk), task.Version)
	if task.Archived {
		_, _ = fmt.Fprintln(w, "archived:  yes")
	}

	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", task.Description)
	}

	if len(task.Dependencies) > 0 {
		_, _ = fmt.Fprintln(w, "\ndepends on:")
		for _, dep := range task.Dependencies {
			_, _ = fmt.Fprintf(w, "  - %s\n", dep)
		}
	}

	if len(blockedBy) > 0 {
		_, _ = fmt.Fprintln(w, "\nblocks:")
		for _, dep := range blockedBy {
			_, _ = fmt.Fprintf(w, "  - %s\n", dep)
		}
	}

	if len(task.Subtasks) > 0 {
		_, _ = fmt.Fprintln(w, "\nsubtasks:")
		for _, st := range task.Subtasks {
			box := "[ ]"
			if st.Done {
				box = "[x]"
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", box, st.Title)
		}
	}

	if len(task.Checklist) > 0 {
		_, _ = fmt.Fprintln(w, "\nchecklist:")
		for _, item := range task.Checklist {
			box := "[ ]"
			if item.Checked {
				box = "[x]"
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", box, item.Text)
		}
	}

	if len(task.Comments) > 0 {
		_, _ = fmt.Fprintln(w, "\ncomments:")
		for _, comment := range task.Comments {
			_, _ = fmt.Fprintf(w, "  %s (%s): %s\n",
				comment.Author, tui.RelativeTimeWith(comment.Timestamp, clk), comment.Text)
			if comment.ReplyTo != "" {
				_, _ = fmt.Fprintf(w, "    in reply to %s\n", comment.ReplyTo)
			}
		}
	}

	if withHistory && len(task.ChangeLog) > 0 {
		_, _ = fmt.Fprintln(w, "\nchange log:")
		for _, entry := range task.ChangeLog {
			_, _ = fmt.Fprintf(w, "  %s %s by %s\n",
				entry.Timestamp.UTC().Format("2006-01-02 15:04"), entry.Action, entry.Actor)
			for field, diff := range entry.FieldDiffs {
				_, _ = fmt.Fprintf(w, "    %s: %s -> %s\n", field, diff.From, diff.To)
			}
		}
	}
}
