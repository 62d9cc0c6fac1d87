package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/constants"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
)

// configTemplate is written to .taskledger/config.yaml on init with every
// recognized option present but commented out.
const configTemplate = `# taskledger project configuration.
# Values here override ~/.taskledger/config.yaml; flags and TASKLEDGER_*
# environment variables override both.

#ledger:
#  actor: local
#  page_size: 25

#undo:
#  depth: 50

#batch:
#  size: 50
#  max_concurrency: 4
#  ceiling: 30s

#sync:
#  mirror_file: TASKS.md
#  strategy: report
#  prefer_source: ledger
#  auto_resolve: false
#  interval: 2s
`

// newInitCmd creates the init command.
func newInitCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a task ledger in the current project",
		Long: `Initialize a task ledger in the project root.

Creates the .taskledger/ directory (tasks, templates, config.yaml) and an
empty TASKS.md mirror. Running init in an already-initialized project is
safe; existing files are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			home := a.store.Home()
			if err := os.MkdirAll(filepath.Join(home, constants.TemplatesDir), 0o750); err != nil {
				return ledgererrors.Wrap(err, "creating templates directory")
			}

			configPath := filepath.Join(home, constants.ConfigFileName)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := os.WriteFile(configPath, []byte(configTemplate), 0o600); err != nil {
					return ledgererrors.Wrap(err, "writing config file")
				}
			}

			mirrorPath := filepath.Join(a.projectRoot, a.cfg.Sync.MirrorFile)
			if _, err := os.Stat(mirrorPath); os.IsNotExist(err) {
				if err := a.sync.WriteMirror(ctx); err != nil {
					return ledgererrors.Wrap(err, "writing mirror file")
				}
			}

			if flags.Output == OutputJSON {
				return a.out.JSON(map[string]string{
					"project_root": a.projectRoot,
					"ledger_home":  home,
					"mirror_file":  mirrorPath,
				})
			}
			a.out.Success(fmt.Sprintf("initialized task ledger in %s", home))
			a.out.Info(fmt.Sprintf("mirror file: %s", mirrorPath))
			return nil
		},
	}
}
