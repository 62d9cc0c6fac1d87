package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tui"
)

// newCommentCmd creates the comment command.
func newCommentCmd(flags *GlobalFlags) *cobra.Command {
	var (
		mentions []string
		replyTo  string
	)

	cmd := &cobra.Command{
		Use:   "comment <task-id> <text>",
		Short: "Add a comment to a task",
		Long: `Append a comment to a task's discussion thread.

Examples:
  taskledger comment 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19 "blocked on DNS cutover"
  taskledger comment 3d1f0c5e-7b2a-4e8d-9f61-84a5c0b72e19 "ping" --mention drew --reply-to <comment-id>`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.rec.Comment(ctx, args[0], ledger.CommentRequest{
				Author:   a.actor,
				Text:     args[1],
				Mentions: mentions,
				ReplyTo:  replyTo,
			})
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("commented on task %s (%d comment(s))",
				tui.ShortID(task.ID), len(task.Comments)))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&mentions, "mention", nil, "mentioned users (repeatable)")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "comment ID this comment replies to")

	return cmd
}
