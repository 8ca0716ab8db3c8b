package guidance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cadencehq/sprintpulse/internal/scoring"
)

const maxTopRisks = 3

// riskBaseWeights rank driver types for the executive view. Delivery risk
// outranks everything; hygiene signals rank lowest.
var riskBaseWeights = map[string]int{
	scoring.DriverDeliveryRisk:        6,
	scoring.DriverBlockerCluster:      5,
	scoring.DriverEndOfSprintPressure: 4,
	scoring.DriverMissingStandup:      3,
	scoring.DriverUnresolvedActions:   3,
	scoring.DriverStaleWork:           2,
	scoring.DriverLowQualityInput:     2,
}

const defaultRiskWeight = 1

// buildExecutiveView condenses the day into a leadership summary. It depends
// only on risk drivers, counts, and the surviving suggestions, so it is
// still populated when the guidance feature flag is off.
func buildExecutiveView(ctx *Context, surviving []Suggestion) ExecutiveView {
	view := ExecutiveView{
		TopRisks:    topRisks(ctx.RiskDrivers),
		TodaysFocus: todaysFocus(ctx),
	}
	for i, s := range surviving {
		if i == maxTopRisks {
			break
		}
		view.TopActions = append(view.TopActions, s.Recommendation)
	}
	if len(surviving) > 0 {
		view.SuggestedStructuralAdjustment = surviving[0].Recommendation
	}
	return view
}

// topRisks ranks the negative drivers by baseWeight x |impact| and renders
// the top three.
func topRisks(drivers []scoring.RiskDriver) []string {
	type scored struct {
		driver scoring.RiskDriver
		score  int
	}
	var negatives []scored
	for _, d := range drivers {
		if d.Impact >= 0 {
			continue
		}
		weight, ok := riskBaseWeights[d.Type]
		if !ok {
			weight = defaultRiskWeight
		}
		negatives = append(negatives, scored{driver: d, score: weight * -d.Impact})
	}
	sort.SliceStable(negatives, func(i, j int) bool {
		return negatives[i].score > negatives[j].score
	})

	var out []string
	for i, n := range negatives {
		if i == maxTopRisks {
			break
		}
		out = append(out, fmt.Sprintf("%s (%d) • %s",
			n.driver.Type, n.driver.Impact, strings.Join(n.driver.Evidence, ", ")))
	}
	return out
}

// todaysFocus picks three fixed-template focus lines from simple boolean
// branches on the day's headline conditions.
func todaysFocus(ctx *Context) []string {
	focus := make([]string, 0, 3)

	if ctx.DeliveryRisk {
		focus = append(focus, "Re-sequence the sprint: the current projection overruns the end date.")
	} else {
		focus = append(focus, "Hold the current plan; the delivery projection is on track.")
	}

	if ctx.UnresolvedActions > 0 {
		focus = append(focus, fmt.Sprintf("Close out the %d open action item(s) before they pile into sprint-end.", ctx.UnresolvedActions))
	} else {
		focus = append(focus, "Action backlog is clear; keep capturing follow-ups as they surface.")
	}

	if ctx.PersistentBlockers > 0 {
		focus = append(focus, fmt.Sprintf("Escalate the %d blocker(s) that have persisted for more than two days.", ctx.PersistentBlockers))
	} else {
		focus = append(focus, "No persistent blockers; keep standup blockers flowing to owners same-day.")
	}

	return focus
}
