package config

import (
	"time"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/errors"
)

// minSyncInterval is the smallest accepted watch polling interval.
// Anything shorter just burns CPU re-hashing an unchanged file.
const minSyncInterval = 100 * time.Millisecond

// Validate checks a Config for out-of-range or unknown values.
// It is called once at construction; an invalid config is rejected before
// any component is built with it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrConfigInvalid, "config is nil")
	}

	if cfg.Ledger.Actor == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "ledger.actor cannot be empty")
	}
	if cfg.Ledger.PageSize < 1 || cfg.Ledger.PageSize > constants.MaxPageSize {
		return errors.Wrapf(errors.ErrConfigInvalid, "ledger.page_size %d out of range 1-%d",
			cfg.Ledger.PageSize, constants.MaxPageSize)
	}

	if cfg.Undo.Depth < 1 || cfg.Undo.Depth > 10000 {
		return errors.Wrapf(errors.ErrConfigInvalid, "undo.depth %d out of range 1-10000", cfg.Undo.Depth)
	}

	if cfg.Batch.Size < 1 || cfg.Batch.Size > 1000 {
		return errors.Wrapf(errors.ErrConfigInvalid, "batch.size %d out of range 1-1000", cfg.Batch.Size)
	}
	if cfg.Batch.MaxConcurrency < 1 || cfg.Batch.MaxConcurrency > 64 {
		return errors.Wrapf(errors.ErrConfigInvalid, "batch.max_concurrency %d out of range 1-64",
			cfg.Batch.MaxConcurrency)
	}
	if cfg.Batch.Ceiling <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "batch.ceiling must be positive")
	}

	if cfg.Sync.MirrorFile == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "sync.mirror_file cannot be empty")
	}
	if !isValidStrategy(cfg.Sync.Strategy) {
		return errors.Wrapf(errors.ErrConfigInvalid, "sync.strategy %q is not one of merge, newest, report",
			cfg.Sync.Strategy)
	}
	if !isValidSource(cfg.Sync.PreferSource) {
		return errors.Wrapf(errors.ErrConfigInvalid, "sync.prefer_source %q is not one of ledger, mirror",
			cfg.Sync.PreferSource)
	}
	if cfg.Sync.Interval < minSyncInterval {
		return errors.Wrapf(errors.ErrConfigInvalid, "sync.interval %s below minimum %s",
			cfg.Sync.Interval, minSyncInterval)
	}

	return nil
}

// isValidStrategy checks membership in the strategy closed set.
func isValidStrategy(s string) bool {
	for _, valid := range ValidStrategies() {
		if s == valid {
			return true
		}
	}
	return false
}

// isValidSource checks membership in the merge source closed set.
func isValidSource(s string) bool {
	for _, valid := range ValidSources() {
		if s == valid {
			return true
		}
	}
	return false
}
