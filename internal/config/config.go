package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level sprintpulse configuration.
type Config struct {
	DataPath            string   `mapstructure:"data_path"`
	Capacity            Capacity `mapstructure:"capacity"`
	Scoring             Scoring  `mapstructure:"scoring"`
	Guidance            Guidance `mapstructure:"guidance"`
	Output              Output   `mapstructure:"output"`
	BackfillParallelism int      `mapstructure:"backfill_parallelism"`
}

// Capacity defines the capacity-imbalance thresholds.
type Capacity struct {
	OverloadedOpenItems int `mapstructure:"overloaded_open_items"`
	MultiBlockedItems   int `mapstructure:"multi_blocked_items"`
	IdleDays            int `mapstructure:"idle_days"`
}

// Scoring defines the tunable scoring constants.
type Scoring struct {
	// OverlapCreditMultiplier scales the overlap de-duplication credit.
	OverlapCreditMultiplier float64 `mapstructure:"overlap_credit_multiplier"`
}

// Guidance defines the proactive-guidance settings. The effective flag is
// this setting combined with the per-project flag in the activity export.
type Guidance struct {
	Enabled bool `mapstructure:"enabled"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("data_path", DefaultDataPath)
	v.SetDefault("capacity.overloaded_open_items", DefaultCapacity.OverloadedOpenItems)
	v.SetDefault("capacity.multi_blocked_items", DefaultCapacity.MultiBlockedItems)
	v.SetDefault("capacity.idle_days", DefaultCapacity.IdleDays)
	v.SetDefault("scoring.overlap_credit_multiplier", DefaultScoring.OverlapCreditMultiplier)
	v.SetDefault("guidance.enabled", DefaultGuidance.Enabled)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("backfill_parallelism", DefaultBackfillParallelism)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.DataPath = expandPath(cfg.DataPath)
	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
