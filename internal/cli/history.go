package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/domain"
	"github.com/taskledger/taskledger/internal/tui"
)

// newHistoryCmd creates the history command.
func newHistoryCmd(flags *GlobalFlags) *cobra.Command {
	var (
		audit bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the operation history",
		Long: `Show recorded operations, newest first.

By default the bounded undo history is shown. With --audit the full
append-only audit trail is read instead, including operations that have
aged out of the undo window and undo operations themselves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var records []*domain.OperationRecord
			if audit {
				records, err = a.rec.ReadAudit()
				if err != nil {
					return err
				}
				// Audit records are stored oldest first; show newest first.
				for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
					records[i], records[j] = records[j], records[i]
				}
			} else {
				records = a.rec.History()
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(records)
			}

			if len(records) == 0 {
				a.out.Info("no recorded operations")
				return nil
			}
			writeHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&audit, "audit", false, "read the full audit trail instead of the undo history")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "limit the number of records shown")

	return cmd
}

// writeHistory renders operation records, newest first.
func writeHistory(w io.Writer, records []*domain.OperationRecord) {
	for _, record := range records {
		_, _ = fmt.Fprintf(w, "%s  %-8s %s",
			record.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
			record.Type,
			tui.ShortID(record.TaskID))
		if record.Description != "" {
			_, _ = fmt.Fprintf(w, "  %s", record.Description)
		}
		_, _ = fmt.Fprintln(w)
	}
}
