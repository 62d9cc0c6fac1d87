package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taskledger/taskledger/internal/batch"
	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/tracker"
	"github.com/taskledger/taskledger/internal/tui"
)

// batchItem is one task definition in a batch import file.
type batchItem struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string   `json:"status,omitempty" yaml:"status,omitempty"`
	Priority    string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Assignee    string   `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Due         string   `json:"due,omitempty" yaml:"due,omitempty"`
}

// batchFlags holds the flags shared by batch subcommands.
type batchFlags struct {
	batchSize      int
	maxConcurrency int
}

// newBatchCmd creates the batch command and its subcommands.
func newBatchCmd(flags *GlobalFlags) *cobra.Command {
	bf := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run bulk operations with bounded concurrency",
	}
	cmd.PersistentFlags().IntVar(&bf.batchSize, "batch-size", 0, "items per chunk")
	cmd.PersistentFlags().IntVar(&bf.maxConcurrency, "max-concurrency", 0, "chunks processed in parallel")

	cmd.AddCommand(newBatchImportCmd(flags, bf), newBatchArchiveCmd(flags, bf))
	return cmd
}

// newBatchImportCmd creates the batch import command.
func newBatchImportCmd(flags *GlobalFlags, bf *batchFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create tasks in bulk from a JSON or YAML file",
		Long: `Create tasks in bulk from a file holding an array of task definitions.
The format is detected from the extension (.json, .yaml, .yml).

Items that fail validation are reported individually; the rest of the
batch still commits. Created IDs are reported in input order.

Example file (YAML):
  - title: Deploy ArgoCD
    priority: high
    tags: [infra]
  - title: Write API documentation
    assignee: sam
    due: 2026-09-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := readBatchFile(args[0])
			if err != nil {
				return err
			}
			requests := make([]ledger.CreateRequest, 0, len(items))
			for _, item := range items {
				req := ledger.CreateRequest{
					Title:       item.Title,
					Description: item.Description,
					Status:      constants.TaskStatus(item.Status),
					Priority:    constants.TaskPriority(item.Priority),
					Tags:        item.Tags,
					Category:    item.Category,
					Assignee:    item.Assignee,
					Actor:       a.actor,
				}
				if item.Due != "" {
					due, err := parseDueDate(item.Due)
					if err != nil {
						return err
					}
					req.DueDate = &due
				}
				requests = append(requests, req)
			}

			controller := batch.NewController(a.rec, tracker.New(a.store.Clock()))
			opts := batchOptions(a, bf, "import "+filepath.Base(args[0]))
			bar := newBatchProgress(cmd, flags, len(requests), &opts)

			result, err := controller.CreateTasks(ctx, requests, opts)
			finishBatchProgress(cmd, flags, bar)
			a.writeMirror(ctx)
			if result != nil {
				reportBatchResult(a, flags, result)
			}
			return err
		},
	}
}

// newBatchArchiveCmd creates the batch archive command.
func newBatchArchiveCmd(flags *GlobalFlags, bf *batchFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <task-id>...",
		Short: "Archive tasks in bulk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			controller := batch.NewController(a.rec, tracker.New(a.store.Clock()))
			opts := batchOptions(a, bf, fmt.Sprintf("archive %d task(s)", len(args)))
			bar := newBatchProgress(cmd, flags, len(args), &opts)

			result, err := controller.ArchiveTasks(ctx, args, opts)
			finishBatchProgress(cmd, flags, bar)
			a.writeMirror(ctx)
			if result != nil {
				reportBatchResult(a, flags, result)
			}
			return err
		},
	}
}

// batchOptions builds controller options from config and flags.
func batchOptions(a *app, bf *batchFlags, jobName string) batch.Options {
	opts := batch.Options{
		BatchSize:      a.cfg.Batch.Size,
		MaxConcurrency: a.cfg.Batch.MaxConcurrency,
		Ceiling:        a.cfg.Batch.Ceiling,
		Actor:          a.actor,
		JobName:        jobName,
	}
	if bf.batchSize > 0 {
		opts.BatchSize = bf.batchSize
	}
	if bf.maxConcurrency > 0 {
		opts.MaxConcurrency = bf.maxConcurrency
	}
	return opts
}

// newBatchProgress attaches a terminal progress bar to the options in text
// mode. Returns nil in JSON mode.
func newBatchProgress(cmd *cobra.Command, flags *GlobalFlags, total int, opts *batch.Options) *tui.ProgressBar {
	if flags.Output == OutputJSON || flags.Quiet || total == 0 {
		return nil
	}
	tui.CheckNoColor()
	bar := tui.NewProgressBar(30)
	errOut := cmd.ErrOrStderr()
	opts.OnProgress = func(p batch.Progress) {
		_, _ = fmt.Fprintf(errOut, "\r%s", bar.RenderCounter(p.Processed, p.Total))
	}
	return bar
}

// finishBatchProgress terminates the progress line.
func finishBatchProgress(cmd *cobra.Command, flags *GlobalFlags, bar *tui.ProgressBar) {
	if bar != nil && flags.Output != OutputJSON {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	}
}

// reportBatchResult prints the batch outcome, including per-item failures.
func reportBatchResult(a *app, flags *GlobalFlags, result *batch.Result) {
	if flags.Output == OutputJSON {
		_ = a.out.JSON(result)
		return
	}

	a.out.Info(fmt.Sprintf("processed %d/%d item(s), job %s",
		result.Processed, result.Total, tui.ShortID(result.JobID)))
	for _, failure := range result.Failures {
		a.out.Warning(fmt.Sprintf("item %d: %s", failure.Index, failure.Err))
	}
	if len(result.Failures) == 0 && result.Processed == result.Total {
		a.out.Success(fmt.Sprintf("%d task(s) processed", result.Processed))
	}
}

// readBatchFile parses an import file into batch items.
func readBatchFile(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // #nosec G304 - user-supplied import file
	if err != nil {
		return nil, ledgererrors.Wrap(err, "reading batch file")
	}

	var items []batchItem
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ledgererrors.ErrInvalidArgument, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ledgererrors.ErrInvalidArgument, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported batch file extension %q",
			ledgererrors.ErrInvalidArgument, filepath.Ext(path))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: batch file %s holds no items", ledgererrors.ErrEmptyValue, path)
	}
	return items, nil
}
