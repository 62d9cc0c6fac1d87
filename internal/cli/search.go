package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/search"
	"github.com/taskledger/taskledger/internal/tui"
)

// searchFlags holds the flags for the search command.
type searchFlags struct {
	searchType string
	fields     []string
	status     string
	priority   string
	tags       []string
	assignee   string
	category   string
	dueAfter   string
	dueBefore  string
	archived   bool
}

// newSearchCmd creates the search command.
func newSearchCmd(flags *GlobalFlags) *cobra.Command {
	sf := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tasks",
		Long: `Search tasks by text, pattern, or filters.

Search types:
  exact    case-insensitive substring match (default)
  regex    Go regular expression
  fuzzy    typo-tolerant similarity match
  boolean  AND/OR expressions, e.g. "deploy AND production OR staging"

An empty query with filters lists every task matching the filters.

Examples:
  taskledger search "argocd"
  taskledger search --type regex "(?i)fix .* bug"
  taskledger search --type fuzzy "argcd prodction"
  taskledger search --type boolean "deploy AND production"
  taskledger search --status pending --due-before 2026-09-30`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			req := search.Request{
				Type:   search.Type(sf.searchType),
				Fields: sf.fields,
				Filters: search.Filters{
					Tags:            sf.tags,
					Assignee:        sf.assignee,
					Category:        sf.category,
					IncludeArchived: sf.archived,
				},
			}
			if len(args) == 1 {
				req.Query = args[0]
			}
			if sf.status != "" {
				status := constants.TaskStatus(sf.status)
				req.Filters.Status = &status
			}
			if sf.priority != "" {
				priority := constants.TaskPriority(sf.priority)
				req.Filters.Priority = &priority
			}
			if sf.dueAfter != "" {
				after, err := parseDueDate(sf.dueAfter)
				if err != nil {
					return err
				}
				req.Filters.DueAfter = &after
			}
			if sf.dueBefore != "" {
				before, err := parseDueDate(sf.dueBefore)
				if err != nil {
					return err
				}
				req.Filters.DueBefore = &before
			}

			matches, err := search.NewEngine(a.store).Search(ctx, req)
			if err != nil {
				return err
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(matches)
			}

			tui.CheckNoColor()
			if len(matches) == 0 {
				a.out.Info("no matching tasks")
				return nil
			}
			for _, match := range matches {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.2f  %s  %s  (%s)\n",
					match.Score,
					tui.ShortID(match.Task.ID),
					match.Task.Title,
					strings.Join(match.MatchedFields, ", "))
			}
			a.out.Info(fmt.Sprintf("%d match(es)", len(matches)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sf.searchType, "type", "", "search type (exact|regex|fuzzy|boolean)")
	cmd.Flags().StringSliceVar(&sf.fields, "fields", nil, "restrict matching to fields (title,description,tags,category,assignee)")
	cmd.Flags().StringVar(&sf.status, "status", "", "filter by status")
	cmd.Flags().StringVar(&sf.priority, "priority", "", "filter by priority")
	cmd.Flags().StringSliceVar(&sf.tags, "tag", nil, "filter by tags (all must be present)")
	cmd.Flags().StringVar(&sf.assignee, "assignee", "", "filter by assignee")
	cmd.Flags().StringVar(&sf.category, "category", "", "filter by category")
	cmd.Flags().StringVar(&sf.dueAfter, "due-after", "", "only tasks due on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sf.dueBefore, "due-before", "", "only tasks due on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&sf.archived, "archived", false, "include archived tasks")

	return cmd
}
