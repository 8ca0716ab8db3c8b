package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cadencehq/sprintpulse/internal/activity"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

// deliveryRiskImpact is the weight the delivery-risk driver contributes to
// risk ranking. It does not feed the health score breakdown; the projection
// overrun is a forecast concern, not a day-level penalty.
const deliveryRiskImpact = -12

// Recorder persists derived rows. Both upserts are idempotent per
// project+day: recomputing a day overwrites rather than appends.
type Recorder interface {
	UpsertHealthDaily(d DailyComputation) error
	UpsertVelocitySnapshot(d DailyComputation) error
}

// Engine runs the daily signal reduction for a project. The pure math lives
// in the detector functions; the engine owns windowing, wiring, and
// persistence.
type Engine struct {
	Source activity.Source

	// Recorder is optional. When nil the computation is not persisted,
	// matching environments where the store is unavailable.
	Recorder Recorder

	Thresholds Thresholds
	Scoring    scoring.Options
}

// NewEngine returns an Engine with stock thresholds and scoring options.
func NewEngine(source activity.Source) *Engine {
	return &Engine{
		Source:     source,
		Thresholds: DefaultThresholds(),
		Scoring:    scoring.DefaultOptions(),
	}
}

// ComputeDay reduces one project-day of raw activity into scored health
// signals. Any source failure is fatal for that day's computation. The day
// is truncated to a UTC calendar date; all windows end at that day's end,
// so recomputing a past day is deterministic.
func (e *Engine) ComputeDay(ctx context.Context, projectID string, day time.Time) (*DailyComputation, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	dayEnd := day.AddDate(0, 0, 1)

	members, err := e.Source.Members(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching members: %w", err)
	}
	entries30, err := e.Source.Standups(ctx, projectID, dayEnd.AddDate(0, 0, -30), dayEnd)
	if err != nil {
		return nil, fmt.Errorf("fetching standups: %w", err)
	}
	issues, err := e.Source.Issues(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching issues: %w", err)
	}
	statusTransitions, err := e.Source.Transitions(ctx, projectID, activity.FieldStatus, dayEnd.AddDate(0, 0, -velocityDays), dayEnd)
	if err != nil {
		return nil, fmt.Errorf("fetching status transitions: %w", err)
	}
	sprintTransitions, err := e.Source.Transitions(ctx, projectID, activity.FieldSprint, dayEnd.AddDate(0, 0, -velocityDays), dayEnd)
	if err != nil {
		return nil, fmt.Errorf("fetching sprint transitions: %w", err)
	}
	actions, err := e.Source.Actions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching actions: %w", err)
	}
	sprint, err := e.Source.ActiveSprint(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching sprint: %w", err)
	}
	guidanceEnabled, err := e.Source.GuidanceEnabled(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetching guidance flag: %w", err)
	}

	entriesToday := entriesIn(entries30, day, dayEnd)
	entries7 := entriesIn(entries30, dayEnd.AddDate(0, 0, -7), dayEnd)
	entries14 := entriesIn(entries30, dayEnd.AddDate(0, 0, -capacityWindowDays), dayEnd)

	chains := DetectBlockerChains(entries7)
	stale := DetectStaleWork(issues, entries7, dayEnd)
	signals := DetectCapacitySignals(members, issues, entries14, dayEnd, e.Thresholds)

	avgPerDay, stability := ComputeVelocity(statusTransitions, dayEnd)
	linkedIssues, researchIDs := linkedWork(entries14, issues)
	weighted := WeightedRemainingWork(linkedIssues, researchIDs, day)
	projected := ProjectCompletion(weighted, avgPerDay, day)
	deliveryRisk := sprint != nil && sprint.EndDate != nil && projected.After(*sprint.EndDate)

	churn := scopeChurn(sprintTransitions, sprint, issues)
	forecast := ComputeForecast(
		standupQuality(entries7),
		stability,
		BlockerVolatility(entries30, dayEnd),
		LinkedWorkCoverage(entries7),
		churn,
		SampledDays(entries7),
	)

	input := scoring.SprintHealthInput{
		PersistentBlockersOver2Days: len(chains),
		MissingStandupMembers:       missingStandups(members, entriesToday),
		StaleWorkCount:              len(stale),
		UnresolvedActions:           unresolvedActions(actions),
		QualityScore:                standupQuality(entriesToday),
		TeamSize:                    max1(len(members)),
		ActiveTaskCount:             max1(openCount(issues)),
		DaysRemainingInSprint:       daysRemaining(sprint, day),
	}
	comp := scoring.ComputeSprintHealthScoreWith(input, e.Scoring)

	if deliveryRisk {
		comp.RiskDrivers = append(comp.RiskDrivers, scoring.RiskDriver{
			Type:   scoring.DriverDeliveryRisk,
			Impact: deliveryRiskImpact,
			Evidence: []string{
				fmt.Sprintf("projected:%s", projected.Format("2006-01-02")),
				fmt.Sprintf("sprint_end:%s", sprint.EndDate.Format("2006-01-02")),
			},
		})
	}

	result := &DailyComputation{
		ProjectID:       projectID,
		Day:             day,
		Input:           input,
		Computation:     comp,
		BlockerChains:   chains,
		StaleIssues:     stale,
		CapacitySignals: signals,
		Velocity: VelocitySnapshot{
			AvgTasksCompletedPerDay: avgPerDay,
			StabilityScore:          stability,
			SampledDays:             forecast.SampledDays,
			WeightedRemainingWork:   weighted,
			ProjectedCompletion:     projected,
			DeliveryRisk:            deliveryRisk,
			ScopeChurn:              churn,
			CapacitySignals:         signals,
		},
		Forecast:        forecast,
		GuidanceEnabled: guidanceEnabled,
	}

	if e.Recorder != nil {
		if err := e.Recorder.UpsertHealthDaily(*result); err != nil {
			return nil, fmt.Errorf("persisting health row: %w", err)
		}
		if err := e.Recorder.UpsertVelocitySnapshot(*result); err != nil {
			return nil, fmt.Errorf("persisting velocity snapshot: %w", err)
		}
	}
	return result, nil
}

// ComputeRange computes every day in [from, to] with bounded parallelism.
// Days are independent; the upserts converge even if two runs overlap, since
// each day's computation is deterministic given the same underlying data.
func (e *Engine) ComputeRange(ctx context.Context, projectID string, from, to time.Time, parallelism int) ([]DailyComputation, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s precedes start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	if parallelism < 1 {
		parallelism = 1
	}

	days := int(to.Sub(from).Hours()/24) + 1
	results := make([]DailyComputation, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < days; i++ {
		g.Go(func() error {
			d, err := e.ComputeDay(gctx, projectID, from.AddDate(0, 0, i))
			if err != nil {
				return err
			}
			results[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func entriesIn(entries []activity.StandupEntry, from, to time.Time) []activity.StandupEntry {
	var out []activity.StandupEntry
	for _, e := range entries {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

func missingStandups(members []activity.Member, todays []activity.StandupEntry) int {
	present := make(map[string]bool)
	for _, e := range todays {
		present[e.UserID] = true
	}
	missing := 0
	for _, m := range members {
		if !present[m.UserID] {
			missing++
		}
	}
	return missing
}

// unresolvedActions counts OPEN and SNOOZED items; snoozing defers an action
// without resolving it.
func unresolvedActions(actions []activity.ActionItem) int {
	n := 0
	for _, a := range actions {
		if a.State == activity.ActionOpen || a.State == activity.ActionSnoozed {
			n++
		}
	}
	return n
}

// linkedWork resolves the distinct issue and research ids referenced by the
// given entries, returning only issues that still exist as snapshots.
func linkedWork(entries []activity.StandupEntry, issues []activity.Issue) ([]activity.Issue, []string) {
	byID := make(map[string]activity.Issue, len(issues))
	for _, i := range issues {
		byID[i.ID] = i
	}

	issueSeen := make(map[string]bool)
	researchSeen := make(map[string]bool)
	var linked []activity.Issue
	var research []string
	for _, e := range entries {
		for _, id := range e.LinkedIssueIDs {
			if issueSeen[id] {
				continue
			}
			issueSeen[id] = true
			if issue, ok := byID[id]; ok {
				linked = append(linked, issue)
			}
		}
		for _, id := range e.LinkedResearchIDs {
			if !researchSeen[id] {
				researchSeen[id] = true
				research = append(research, id)
			}
		}
	}
	sort.Strings(research)
	return linked, research
}

// scopeChurn counts sprint-field transitions into and out of the active
// sprint within the velocity window.
func scopeChurn(transitions []activity.Transition, sprint *activity.Sprint, issues []activity.Issue) ScopeChurn {
	churn := ScopeChurn{TotalWork: len(issues)}
	if sprint == nil {
		return churn
	}
	for _, t := range transitions {
		if t.NewValue == sprint.ID {
			churn.ItemsAdded++
		} else {
			churn.ItemsRemoved++
		}
	}
	return churn
}

func openCount(issues []activity.Issue) int {
	n := 0
	for _, i := range issues {
		if i.Open() {
			n++
		}
	}
	return n
}

func daysRemaining(sprint *activity.Sprint, day time.Time) *int {
	if sprint == nil || sprint.EndDate == nil {
		return nil
	}
	d := int(sprint.EndDate.Sub(day).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return &d
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
