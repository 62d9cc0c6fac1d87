package config

import (
	"github.com/spf13/viper"

	"github.com/taskledger/taskledger/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			// Actor: "local" attributes unattributed mutations to the
			// machine-local user. CI and bots should override this.
			Actor: "local",

			// PageSize: 25 keeps default listings readable.
			PageSize: constants.DefaultPageSize,
		},
		Undo: UndoConfig{
			// Depth: 50 operations is enough to recover from a bad editing
			// session without retaining the entire project history in memory.
			Depth: constants.DefaultUndoDepth,
		},
		Batch: BatchConfig{
			// Size: 50 items per chunk balances progress granularity
			// against per-chunk overhead.
			Size: constants.DefaultBatchSize,

			// MaxConcurrency: 4 chunks in flight. Creates are serialized
			// against the store anyway, so higher values mostly add contention.
			MaxConcurrency: constants.DefaultMaxConcurrency,

			// Ceiling: batch creation of 1,000+ tasks is an expected workload
			// and must not block the process indefinitely.
			Ceiling: constants.DefaultBatchCeiling,
		},
		Sync: SyncConfig{
			// MirrorFile: TASKS.md at the project root where humans edit it.
			MirrorFile: constants.MirrorFileName,

			// Strategy: "report" never changes data without an explicit ask.
			Strategy: StrategyReport,

			// PreferSource: the ledger is the source of truth.
			PreferSource: SourceLedger,

			// AutoResolve: off. Resolution is an explicit, audited operation.
			AutoResolve: false,

			// Interval: 2s keeps watch mode responsive without hammering
			// the filesystem.
			Interval: constants.DefaultSyncInterval,
		},
	}
}

// setDefaults registers every default on a viper instance so config files
// and environment variables only need to name the keys they override.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("ledger.actor", d.Ledger.Actor)
	v.SetDefault("ledger.page_size", d.Ledger.PageSize)

	v.SetDefault("undo.depth", d.Undo.Depth)

	v.SetDefault("batch.size", d.Batch.Size)
	v.SetDefault("batch.max_concurrency", d.Batch.MaxConcurrency)
	v.SetDefault("batch.ceiling", d.Batch.Ceiling)

	v.SetDefault("sync.mirror_file", d.Sync.MirrorFile)
	v.SetDefault("sync.strategy", d.Sync.Strategy)
	v.SetDefault("sync.prefer_source", d.Sync.PreferSource)
	v.SetDefault("sync.auto_resolve", d.Sync.AutoResolve)
	v.SetDefault("sync.interval", d.Sync.Interval)
}
