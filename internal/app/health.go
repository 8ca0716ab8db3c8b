package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/output"
)

var (
	healthDay  string
	healthJSON bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Compute and display today's sprint health score",
	Long: `Reduce the project's activity for one day into the composite health
score, with the full score breakdown, ranked risk drivers, outcome
probabilities, and the delivery forecast. The computed row is persisted
to the local database when it is available.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&healthDay, "day", "", "Day to compute (YYYY-MM-DD, default today)")
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	_, engine, projectID, err := setup()
	if err != nil {
		return err
	}

	day, err := parseDay(healthDay)
	if err != nil {
		return err
	}

	if db := openStore(); db != nil {
		defer func() { _ = db.Close() }()
		engine.Recorder = db
	}

	comp, err := engine.ComputeDay(context.Background(), projectID, day)
	if err != nil {
		return fmt.Errorf("computing health: %w", err)
	}

	if healthJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(comp)
	}

	renderHealth(comp)
	return nil
}

func renderHealth(d *aggregate.DailyComputation) {
	c := d.Computation

	fmt.Println(output.Section(fmt.Sprintf("Sprint Health — %s — %s", d.ProjectID, d.Day.Format("2006-01-02"))))
	fmt.Println()

	statusLabel := output.StatusStyle(string(c.Status)).Render(string(c.Status))
	fmt.Printf(" %s  %s  confidence: %s\n", output.HealthBar(float64(c.HealthScore), 20), statusLabel, c.ConfidenceLevel)
	fmt.Printf(" %s success %d%%  |  spillover %d%%  |  model %s\n",
		output.StyleMuted.Render("odds:"),
		c.Probabilities.SprintSuccess, c.Probabilities.Spillover, c.ScoringModelVersion)
	fmt.Println()

	fmt.Println(output.Section("Score Breakdown"))
	fmt.Println()
	tbl := output.NewTable("Component", "Impact")
	for _, entry := range c.ScoreBreakdown {
		tbl.AddRow(entry.Label, output.ImpactStyle(entry.Impact).Render(formatImpact(entry.Impact)))
	}
	fmt.Print(tbl.Render())
	fmt.Println()

	if len(c.RiskDrivers) > 0 {
		fmt.Println(output.Section("Risk Drivers"))
		fmt.Println()
		for _, driver := range c.RiskDrivers {
			impact := output.ImpactStyle(driver.Impact).Render(formatImpact(driver.Impact))
			fmt.Printf(" %s %s\n", impact, output.StyleBold.Render(driver.Type))
			if flagVerbose {
				for _, ev := range driver.Evidence {
					fmt.Printf("    %s\n", output.StyleMuted.Render(ev))
				}
			}
		}
		fmt.Println()
	}

	fmt.Println(output.Section("Delivery Forecast"))
	fmt.Println()
	fmt.Printf(" %s%s\n", output.StyleLabel.Render("Projected completion"), d.Velocity.ProjectedCompletion.Format("2006-01-02"))
	fmt.Printf(" %s%.2f tasks/day (stability %.2f over %d days)\n",
		output.StyleLabel.Render("Velocity"), d.Velocity.AvgTasksCompletedPerDay, d.Velocity.StabilityScore, d.Velocity.SampledDays)
	fmt.Printf(" %s%.1f\n", output.StyleLabel.Render("Weighted remaining"), d.Velocity.WeightedRemainingWork)
	fmt.Printf(" %s%s (blended %.2f)\n", output.StyleLabel.Render("Forecast confidence"), d.Forecast.Confidence, d.Forecast.BlendedScore)
	if d.Velocity.DeliveryRisk {
		fmt.Printf(" %s\n", output.StyleError.Render("Projection overruns the sprint end date."))
	}
	fmt.Println()
}

// formatImpact renders an impact with an explicit sign for credits.
func formatImpact(impact int) string {
	if impact > 0 {
		return "+" + strconv.Itoa(impact)
	}
	return strconv.Itoa(impact)
}
