// Package config provides configuration loading and defaults for sprintpulse.
package config

// DefaultConfigDir is the default location for sprintpulse configuration.
const DefaultConfigDir = "~/.config/sprintpulse"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "sprintpulse.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultDataPath is the default activity export location.
const DefaultDataPath = "activity.json"

// DefaultCapacity holds the stock capacity-imbalance thresholds.
var DefaultCapacity = Capacity{
	OverloadedOpenItems: 5,
	MultiBlockedItems:   2,
	IdleDays:            5,
}

// DefaultScoring holds the stock scoring tunables.
var DefaultScoring = Scoring{
	OverlapCreditMultiplier: 0.12,
}

// DefaultGuidance holds the stock guidance settings.
var DefaultGuidance = Guidance{
	Enabled: true,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultBackfillParallelism bounds concurrent per-day computations.
const DefaultBackfillParallelism = 4
