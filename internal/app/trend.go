package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadencehq/sprintpulse/internal/output"
	"github.com/cadencehq/sprintpulse/internal/trend"
)

var (
	trendDays int
	trendJSON bool
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the smoothed health trend over recent days",
	Long: `Compute health for each of the last N days and smooth the sequence with
a trailing three-day mean. Day-over-day movement inside the dead band reports
as unchanged, so single noisy days do not flip the indicator.`,
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().IntVar(&trendDays, "days", 14, "Number of trailing days to include")
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	cfg, engine, projectID, err := setup()
	if err != nil {
		return err
	}

	if trendDays < 1 {
		trendDays = 1
	}
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(trendDays - 1))

	if db := openStore(); db != nil {
		defer func() { _ = db.Close() }()
		engine.Recorder = db
	}

	computations, err := engine.ComputeRange(context.Background(), projectID, from, to, cfg.BackfillParallelism)
	if err != nil {
		return fmt.Errorf("computing range: %w", err)
	}

	report := trend.Smooth(trend.FromComputations(computations))

	if trendJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderTrend(report)
	return nil
}

func renderTrend(report trend.Report) {
	fmt.Println(output.Section(fmt.Sprintf("Health Trend — last %d days", len(report.Points))))
	fmt.Println()

	tbl := output.NewTable("Day", "Raw", "Smoothed")
	for _, p := range report.Points {
		tbl.AddRow(p.Day.Format("2006-01-02"), fmt.Sprintf("%d", p.RawScore), fmt.Sprintf("%.1f", p.SmoothedScore))
	}
	fmt.Print(tbl.Render())
	fmt.Println()

	glyph := output.TrendGlyph(report.Indicator)
	fmt.Printf(" %s %s %s\n", output.StyleLabel.Render("Indicator"), glyph, report.Indicator)
	fmt.Printf(" %s %s\n", output.StyleLabel.Render("Risk delta (1d)"), output.TrendArrow(float64(report.RiskDeltaSinceYesterday), false))
	fmt.Printf(" %s %s", output.StyleLabel.Render("Projected completion"), report.SmoothedProjectedCompletion.Format("2006-01-02"))
	if report.ProjectionDayDelta != 0 {
		fmt.Printf("  (%+d days vs yesterday)", report.ProjectionDayDelta)
	}
	fmt.Println()
	fmt.Println()
}
