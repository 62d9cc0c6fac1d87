package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// newMirrorCmd creates the mirror command and its subcommands.
func newMirrorCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Manage the TASKS.md mirror file",
	}
	cmd.AddCommand(newMirrorWriteCmd(flags), newMirrorPreviewCmd(flags))
	return cmd
}

// newMirrorWriteCmd creates the mirror write command.
func newMirrorWriteCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write",
		Short: "Regenerate the mirror file from the ledger",
		Long: `Rewrite TASKS.md from the ledger's current state. Any unsynced
external edits in the mirror are overwritten; run "taskledger sync" first
if they should be reconciled instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sync.WriteMirror(ctx); err != nil {
				return err
			}

			path := filepath.Join(a.projectRoot, a.cfg.Sync.MirrorFile)
			if flags.Output == OutputJSON {
				return a.out.JSON(map[string]string{"mirror_file": path})
			}
			a.out.Success(fmt.Sprintf("wrote %s", path))
			return nil
		},
	}
}

// newMirrorPreviewCmd creates the mirror preview command.
func newMirrorPreviewCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Render the mirror file in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			path := filepath.Join(a.projectRoot, a.cfg.Sync.MirrorFile)
			content, err := os.ReadFile(path) //nolint:gosec // #nosec G304 - path comes from project config
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("%w: %s (run \"taskledger mirror write\")",
						ledgererrors.ErrMirrorUnreadable, path)
				}
				return ledgererrors.Wrap(err, "reading mirror file")
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(map[string]string{"mirror_file": path, "content": string(content)})
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				// Fall back to raw markdown when the renderer cannot start.
				_, _ = cmd.OutOrStdout().Write(content)
				return nil
			}
			rendered, err := renderer.Render(string(content))
			if err != nil {
				_, _ = cmd.OutOrStdout().Write(content)
				return nil
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}
