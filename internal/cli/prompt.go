package cli

import (
	"github.com/spf13/cobra"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/prompts"
)

// newPromptCmd creates the prompt command and its subcommands.
func newPromptCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Generate natural-language text from tasks",
		Long: `Render prompt text from task snapshots: a single-task summary, a
review request for a completed task, or a standup digest across the
project. The generators only read the ledger; they never change it.`,
	}
	cmd.AddCommand(newPromptSummaryCmd(flags), newPromptReviewCmd(flags), newPromptStandupCmd(flags))
	return cmd
}

// newPromptSummaryCmd creates the prompt summary command.
func newPromptSummaryCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <task-id>",
		Short: "Render a summary prompt for one task",
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
			text, err := prompts.Render(prompts.TaskSummary, prompts.NewTaskSummaryData(task))
			if err != nil {
				return err
			}
			return emitPrompt(a, flags, string(prompts.TaskSummary), text)
		},
	}
}

// newPromptReviewCmd creates the prompt review command.
func newPromptReviewCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "review <task-id>",
		Short: "Render a review request for a completed task",
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
			text, err := prompts.Render(prompts.TaskReview, prompts.NewTaskReviewData(task))
			if err != nil {
				return err
			}
			return emitPrompt(a, flags, string(prompts.TaskReview), text)
		},
	}
}

// newPromptStandupCmd creates the prompt standup command.
func newPromptStandupCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "standup",
		Short: "Render a standup digest across all active tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.store.All(ctx)
			if err != nil {
				return err
			}
			data := prompts.NewStandupDigestData(tasks, a.store.Clock().Now())
			text, err := prompts.Render(prompts.StandupDigest, data)
			if err != nil {
				return err
			}
			return emitPrompt(a, flags, string(prompts.StandupDigest), text)
		},
	}
}

// emitPrompt writes rendered prompt text in the selected output format.
func emitPrompt(a *app, flags *GlobalFlags, id, text string) error {
	if flags.Output == OutputJSON {
		return a.out.JSON(map[string]string{"prompt": id, "text": text})
	}
	if text == "" {
		return ledgererrors.ErrEmptyValue
	}
	a.out.Info(text)
	return nil
}
