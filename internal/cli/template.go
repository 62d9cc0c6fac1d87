package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/template"
	"github.com/taskledger/taskledger/internal/tui"
)

// newTemplateCmd creates the template command and its subcommands.
func newTemplateCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage reusable task templates",
		Long: `Manage reusable task templates stored as YAML files under
.taskledger/templates/. Templates expand into tasks via "template spawn";
templates with a recurrence rule report their next occurrence.`,
	}
	cmd.AddCommand(newTemplateListCmd(flags), newTemplateSpawnCmd(flags))
	return cmd
}

// loadTemplates loads the project's template registry.
func loadTemplates(a *app) (*template.Registry, error) {
	loader := template.NewLoader(filepath.Join(a.store.Home(), constants.TemplatesDir))
	templates, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}
	return template.NewRegistry(templates), nil
}

// newTemplateListCmd creates the template list command.
func newTemplateListCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available task templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			reg, err := loadTemplates(a)
			if err != nil {
				return err
			}
			templates := reg.List()

			if flags.Output == OutputJSON {
				return a.out.JSON(templates)
			}

			if len(templates) == 0 {
				a.out.Info("no templates found")
				return nil
			}
			for _, tmpl := range templates {
				line := fmt.Sprintf("%-20s %s", tmpl.Name, tmpl.Description)
				if tmpl.Recurrence != "" {
					rec, err := template.ParseRecurrence(tmpl.Recurrence)
					if err == nil {
						line += fmt.Sprintf("  (recurs %s, next %s)",
							tmpl.Recurrence,
							rec.Next(a.store.Clock().Now()).Format("2006-01-02 15:04"))
					}
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " "))
			}
			return nil
		},
	}
}

// newTemplateSpawnCmd creates the template spawn command.
func newTemplateSpawnCmd(flags *GlobalFlags) *cobra.Command {
	var (
		values   []string
		title    string
		priority string
		assignee string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "spawn <name>",
		Short: "Create a task from a template",
		Long: `Instantiate a template into a new task. Template variables are
filled with --set key=value; required variables without defaults must be
provided.

Examples:
  taskledger template spawn release --set version=v1.4.0
  taskledger template spawn standup --assignee drew`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			reg, err := loadTemplates(a)
			if err != nil {
				return err
			}
			tmpl, err := reg.Get(args[0])
			if err != nil {
				return err
			}

			parsed := make(map[string]string, len(values))
			for _, pair := range values {
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("%w: --set %q must be key=value",
						ledgererrors.ErrInvalidArgument, pair)
				}
				parsed[key] = value
			}

			req, err := tmpl.Instantiate(template.Overrides{
				Title:    title,
				Priority: priority,
				Assignee: assignee,
				Tags:     tags,
				Actor:    a.actor,
				Values:   parsed,
			})
			if err != nil {
				return err
			}

			task, err := a.rec.Create(ctx, req)
			if err != nil {
				return err
			}
			a.writeMirror(ctx)

			if flags.Output == OutputJSON {
				return a.out.JSON(task)
			}
			a.out.Success(fmt.Sprintf("created task %s from template %s: %s",
				tui.ShortID(task.ID), tmpl.Name, task.Title))
			if tmpl.Recurrence != "" {
				rec, err := template.ParseRecurrence(tmpl.Recurrence)
				if err == nil {
					a.out.Info(fmt.Sprintf("next occurrence: %s",
						rec.Next(a.store.Clock().Now()).Format("2006-01-02 15:04")))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&values, "set", nil, "template variable (key=value, repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "override the template title")
	cmd.Flags().StringVar(&priority, "priority", "", "override the template priority")
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "override the template assignee")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "additional tags")

	return cmd
}
