package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskledger/taskledger/internal/config"
	ledgererrors "github.com/taskledger/taskledger/internal/errors"
	"github.com/taskledger/taskledger/internal/journal"
	"github.com/taskledger/taskledger/internal/ledger"
	"github.com/taskledger/taskledger/internal/mirror"
	"github.com/taskledger/taskledger/internal/tui"
)

// app bundles the opened ledger stack shared by all commands that operate
// on a project: configuration, the task store, the operation recorder, and
// the mirror sync engine. Close releases the ledger lock.
type app struct {
	cfg         *config.Config
	store       *ledger.Store
	rec         *journal.Recorder
	sync        *mirror.Engine
	out         tui.Output
	logger      zerolog.Logger
	projectRoot string
	actor       string
}

// openApp resolves the project root, loads configuration with flag
// overrides, acquires the ledger lock, and wires the recorder and mirror
// engine. The returned context carries the logger for library code.
func openApp(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags) (context.Context, *app, error) {
	projectRoot, err := resolveProjectRoot(flags)
	if err != nil {
		return ctx, nil, err
	}

	cfg, err := config.LoadWithOverrides(projectRoot, config.Overrides{Actor: flags.Actor})
	if err != nil {
		return ctx, nil, err
	}

	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	store, err := ledger.Open(ctx, projectRoot)
	if err != nil {
		return ctx, nil, err
	}

	rec := journal.NewRecorder(store, journal.WithDepth(cfg.Undo.Depth))
	syncEngine := mirror.NewEngine(rec, filepath.Join(projectRoot, cfg.Sync.MirrorFile))

	return ctx, &app{
		cfg:         cfg,
		store:       store,
		rec:         rec,
		sync:        syncEngine,
		out:         tui.NewOutput(cmd.OutOrStdout(), flags.Output),
		logger:      logger,
		projectRoot: projectRoot,
		actor:       cfg.Ledger.Actor,
	}, nil
}

// Close releases the ledger lock.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing ledger store")
	}
}

// writeMirror regenerates TASKS.md after a mutation. Mirror write failures
// are logged rather than failing the command; the ledger stays canonical.
func (a *app) writeMirror(ctx context.Context) {
	if err := a.sync.WriteMirror(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("rewriting mirror file")
	}
}

// resolveProjectRoot returns the project root from flags or the working
// directory, verifying it exists.
func resolveProjectRoot(flags *GlobalFlags) (string, error) {
	root := flags.Project
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", ledgererrors.Wrap(err, "resolving working directory")
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", ledgererrors.Wrap(err, "resolving project root")
	}
	if _, err := os.Stat(abs); err != nil {
		return "", ledgererrors.Wrapf(ledgererrors.ErrProjectPathNotFound, "%s", abs)
	}
	return abs, nil
}
