package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/taskledger/taskledger/internal/constants"
	"github.com/taskledger/taskledger/internal/errors"
)

// newViperInstance creates a new Viper instance with standard taskledger
// configuration: defaults, TASKLEDGER_ environment prefix, and key replacer
// so TASKLEDGER_BATCH_MAX_CONCURRENCY maps to batch.max_concurrency.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("TASKLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks used to unmarshal config:
// string-to-duration so "30s" works in YAML and env vars, and
// string-to-slice for comma-separated env values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error. Missing config files are expected; defaults apply.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// projectRoot is the directory whose .taskledger/config.yaml is the project
// layer; pass the working directory for normal CLI use.
//
// The function returns an error only for actual configuration problems,
// not for missing config files (which are expected in many scenarios).
func Load(projectRoot string) (*Config, error) {
	v := newViperInstance()

	// Global config first (lower precedence): user-wide defaults.
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Project config second (higher precedence, merges over global).
	if err := loadProjectConfig(v, projectRoot); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// Overrides carries CLI flag values that take precedence over every file and
// environment source. Zero values mean "not set".
type Overrides struct {
	// Actor overrides ledger.actor.
	Actor string
	// MirrorFile overrides sync.mirror_file.
	MirrorFile string
	// Strategy overrides sync.strategy.
	Strategy string
	// BatchSize overrides batch.size.
	BatchSize int
	// MaxConcurrency overrides batch.max_concurrency.
	MaxConcurrency int
	// UndoDepth overrides undo.depth.
	UndoDepth int
}

// LoadWithOverrides loads configuration like Load and then applies CLI flag
// overrides at the highest precedence.
func LoadWithOverrides(projectRoot string, o Overrides) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v, projectRoot); err != nil {
		return nil, err
	}

	if o.Actor != "" {
		v.Set("ledger.actor", o.Actor)
	}
	if o.MirrorFile != "" {
		v.Set("sync.mirror_file", o.MirrorFile)
	}
	if o.Strategy != "" {
		v.Set("sync.strategy", o.Strategy)
	}
	if o.BatchSize > 0 {
		v.Set("batch.size", o.BatchSize)
	}
	if o.MaxConcurrency > 0 {
		v.Set("batch.max_concurrency", o.MaxConcurrency)
	}
	if o.UndoDepth > 0 {
		v.Set("undo.depth", o.UndoDepth)
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig merges ~/.taskledger/config.yaml into v if it exists.
func loadGlobalConfig(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory means no global config; defaults still apply.
		return nil
	}

	path := filepath.Join(home, constants.GlobalHome, constants.ConfigFileName)
	return mergeConfigFile(v, path)
}

// loadProjectConfig merges <projectRoot>/.taskledger/config.yaml into v if it exists.
func loadProjectConfig(v *viper.Viper, projectRoot string) error {
	if projectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get working directory")
		}
		projectRoot = cwd
	}

	path := filepath.Join(projectRoot, constants.LedgerHome, constants.ConfigFileName)
	return mergeConfigFile(v, path)
}

// mergeConfigFile merges a single YAML config file into v.
// A missing file is not an error.
func mergeConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		if isConfigNotFoundError(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read config %s", path)
	}
	return nil
}
