package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadencehq/sprintpulse/internal/activity"
	"github.com/cadencehq/sprintpulse/internal/guidance"
	"github.com/cadencehq/sprintpulse/internal/output"
)

var (
	guidanceDay  string
	guidanceRole string
	guidanceUser string
	guidanceJSON bool
	lifecycleDay string
	lifecycleFor int
)

var guidanceCmd = &cobra.Command{
	Use:   "guidance",
	Short: "Generate coaching suggestions and the executive view",
	Long: `Run the day's health computation and turn its signals into deduplicated
coaching suggestions, gated by role and forecast confidence, plus a condensed
executive summary. Accepted, dismissed, and snoozed suggestions keep their
state across recomputations via a stable content-addressed id.`,
	RunE: runGuidance,
}

var guidanceAcceptCmd = &cobra.Command{
	Use:   "accept <suggestion-id>",
	Short: "Mark a suggestion as accepted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLifecycle(args[0], guidance.StateAccepted)
	},
}

var guidanceDismissCmd = &cobra.Command{
	Use:   "dismiss <suggestion-id>",
	Short: "Dismiss a suggestion (indefinitely, or for --for days)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLifecycle(args[0], guidance.StateDismissed)
	},
}

var guidanceSnoozeCmd = &cobra.Command{
	Use:   "snooze <suggestion-id>",
	Short: "Snooze a suggestion for --for days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lifecycleFor < 1 {
			lifecycleFor = 1
		}
		return setLifecycle(args[0], guidance.StateSnoozed)
	},
}

func init() {
	guidanceCmd.Flags().StringVar(&guidanceDay, "day", "", "Day to compute (YYYY-MM-DD, default today)")
	guidanceCmd.Flags().StringVar(&guidanceRole, "role", "", "Caller's project role (PO, ADMIN, ...)")
	guidanceCmd.Flags().StringVar(&guidanceUser, "user", "local", "User ID for lifecycle state")
	guidanceCmd.Flags().BoolVar(&guidanceJSON, "json", false, "Output as JSON")

	for _, sub := range []*cobra.Command{guidanceAcceptCmd, guidanceDismissCmd, guidanceSnoozeCmd} {
		sub.Flags().StringVar(&lifecycleDay, "day", "", "Day the suggestion was generated (YYYY-MM-DD, default today)")
		sub.Flags().IntVar(&lifecycleFor, "for", 0, "Suppress for N days (0 = indefinitely)")
		guidanceCmd.AddCommand(sub)
	}
	// The lifecycle writes are per-user; reuse the parent's flag default.
	guidanceAcceptCmd.Flags().StringVar(&guidanceUser, "user", "local", "User ID for lifecycle state")
	guidanceDismissCmd.Flags().StringVar(&guidanceUser, "user", "local", "User ID for lifecycle state")
	guidanceSnoozeCmd.Flags().StringVar(&guidanceUser, "user", "local", "User ID for lifecycle state")

	rootCmd.AddCommand(guidanceCmd)
}

func runGuidance(cmd *cobra.Command, args []string) error {
	cfg, engine, projectID, err := setup()
	if err != nil {
		return err
	}

	day, err := parseDay(guidanceDay)
	if err != nil {
		return err
	}

	db := openStore()
	if db != nil {
		defer func() { _ = db.Close() }()
		engine.Recorder = db
	}

	comp, err := engine.ComputeDay(context.Background(), projectID, day)
	if err != nil {
		return fmt.Errorf("computing health: %w", err)
	}

	lifecycle := map[string]guidance.LifecycleState{}
	if db != nil {
		lifecycle, err = db.GetSuggestionStates(projectID, guidanceUser, comp.Day)
		if err != nil {
			return fmt.Errorf("loading suggestion states: %w", err)
		}
	}

	actions, err := engine.Source.Actions(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("fetching actions: %w", err)
	}
	var openActionIDs []string
	for _, a := range actions {
		if a.State == activity.ActionOpen {
			openActionIDs = append(openActionIDs, a.ID)
		}
	}

	result := guidance.Build(&guidance.Context{
		CapacitySignals:    comp.CapacitySignals,
		RiskDrivers:        comp.Computation.RiskDrivers,
		StaleIssues:        comp.StaleIssues,
		PersistentBlockers: comp.Input.PersistentBlockersOver2Days,
		UnresolvedActions:  comp.Input.UnresolvedActions,
		QualityScore:       comp.Input.QualityScore,
		DeliveryRisk:       comp.Velocity.DeliveryRisk,
		ForecastConfidence: comp.Forecast.Confidence,
		CallerRole:         guidanceRole,
		OpenActionIDs:      openActionIDs,
		Lifecycle:          lifecycle,
		Now:                time.Now().UTC(),
		Enabled:            cfg.Guidance.Enabled && comp.GuidanceEnabled,
	})

	if guidanceJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderGuidance(result)
	return nil
}

func renderGuidance(result guidance.Result) {
	fmt.Println(output.Section("Coaching Suggestions"))
	fmt.Println()

	if len(result.Suggestions) == 0 {
		fmt.Println(" No suggestions for today.")
	}
	for i, s := range result.Suggestions {
		label := output.StyleBold.Render(s.Type)
		if s.ConfidenceLabel != "" {
			label += " " + output.StyleWarning.Render("["+s.ConfidenceLabel+"]")
		}
		fmt.Printf(" #%d %s  impact %d  (%s)\n", i+1, label, s.ImpactScore, s.ID)
		fmt.Printf("    %s\n", s.Recommendation)
		fmt.Printf("    %s\n", output.StyleMuted.Render(s.Reason))
		if flagVerbose {
			fmt.Printf("    %s %s\n", output.StyleMuted.Render("role:"), s.RequiresRole)
			for _, ev := range s.Evidence {
				fmt.Printf("    %s\n", output.StyleMuted.Render(ev))
			}
		}
		fmt.Println()
	}

	fmt.Println(output.Section("Executive View"))
	fmt.Println()
	for _, r := range result.Executive.TopRisks {
		fmt.Printf(" %s %s\n", output.StyleError.Render("risk:"), r)
	}
	for _, a := range result.Executive.TopActions {
		fmt.Printf(" %s %s\n", output.StyleWarning.Render("action:"), a)
	}
	for _, f := range result.Executive.TodaysFocus {
		fmt.Printf(" %s %s\n", output.StyleSuccess.Render("focus:"), f)
	}
	if result.Executive.SuggestedStructuralAdjustment != "" {
		fmt.Printf(" %s %s\n", output.StyleBold.Render("adjust:"), result.Executive.SuggestedStructuralAdjustment)
	}
	fmt.Println()
}

// setLifecycle persists a lifecycle transition for one suggestion id.
func setLifecycle(suggestionID, state string) error {
	_, _, projectID, err := setup()
	if err != nil {
		return err
	}

	day, err := parseDay(lifecycleDay)
	if err != nil {
		return err
	}

	db := openStore()
	if db == nil {
		return fmt.Errorf("store unavailable; lifecycle state requires the local database")
	}
	defer func() { _ = db.Close() }()

	var dismissedUntil, snoozedUntil *time.Time
	if lifecycleFor > 0 {
		until := time.Now().UTC().AddDate(0, 0, lifecycleFor)
		switch state {
		case guidance.StateDismissed:
			dismissedUntil = &until
		case guidance.StateSnoozed:
			snoozedUntil = &until
		}
	}

	if err := db.SetSuggestionState(projectID, guidanceUser, day.UTC().Truncate(24*time.Hour), suggestionID, state, dismissedUntil, snoozedUntil); err != nil {
		return fmt.Errorf("saving suggestion state: %w", err)
	}

	fmt.Printf("%s %s\n", suggestionID, state)
	return nil
}
