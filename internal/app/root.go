// Package app contains the Cobra command tree for sprintpulse.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cadencehq/sprintpulse/internal/activity"
	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/config"
	"github.com/cadencehq/sprintpulse/internal/output"
	"github.com/cadencehq/sprintpulse/internal/scoring"
	"github.com/cadencehq/sprintpulse/internal/store"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagData    string
	flagProject string
)

var rootCmd = &cobra.Command{
	Use:   "sprintpulse",
	Short: "Sprint health scoring and proactive guidance",
	Long: `sprintpulse reduces raw team activity — standups, issues, transitions,
action items — into a daily sprint health score with ranked risk drivers,
delivery forecasts, coaching suggestions, and smoothed trends.

Run 'sprintpulse' with no arguments to see available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("sprintpulse", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  health    Compute and display today's sprint health score")
		fmt.Println("  guidance  Generate coaching suggestions and the executive view")
		fmt.Println("  trend     Show the smoothed health trend over recent days")
		fmt.Println("  backfill  Recompute and persist a historical day range")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/sprintpulse/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Activity export path (default: from config)")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Project ID (default: from the activity export)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// setup loads config, applies output flags, and opens the activity source.
// Returns the configured engine and the resolved project id.
func setup() (*config.Config, *aggregate.Engine, string, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color || !isatty.IsTerminal(os.Stdout.Fd()) {
		output.SetNoColor(true)
	}

	dataPath := cfg.DataPath
	if flagData != "" {
		dataPath = flagData
	}
	source, err := activity.LoadFile(dataPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading activity export: %w", err)
	}

	projectID := source.ProjectID()
	if flagProject != "" {
		projectID = flagProject
	}

	engine := aggregate.NewEngine(source)
	engine.Thresholds = aggregate.Thresholds{
		OverloadedOpenItems: cfg.Capacity.OverloadedOpenItems,
		MultiBlockedItems:   cfg.Capacity.MultiBlockedItems,
		IdleDays:            cfg.Capacity.IdleDays,
	}
	engine.Scoring = scoring.Options{
		OverlapCreditMultiplier: cfg.Scoring.OverlapCreditMultiplier,
	}

	return cfg, engine, projectID, nil
}

// openStore opens the SQLite database. A failure is non-fatal for read
// commands: computations still run, they just are not persisted.
func openStore() *store.DB {
	db, err := store.Open(config.DBPath())
	if err != nil {
		if flagVerbose {
			fmt.Fprintln(os.Stderr, "warning: store unavailable:", err)
		}
		return nil
	}
	return db
}

// parseDay parses a --day flag value, defaulting to today (UTC).
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}
