package guidance

import (
	"fmt"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

const (
	maxReallocations      = 3
	maxScopeCandidates    = 3
	maxMeetingSuggestions = 3
)

// Reallocation proposes moving one representative work item from each
// overloaded member to an idle one. Suppressed entirely when the delivery
// forecast is LOW: low-confidence data should not drive people-moves.
func Reallocation(ctx *Context) []Suggestion {
	if ctx.ForecastConfidence == scoring.ConfidenceLow {
		return nil
	}

	var sources, targets []aggregate.CapacitySignal
	for _, s := range ctx.CapacitySignals {
		switch s.Type {
		case aggregate.SignalOverloaded:
			sources = append(sources, s)
		case aggregate.SignalIdle:
			targets = append(targets, s)
		}
	}

	var suggestions []Suggestion
	for _, src := range sources {
		for _, tgt := range targets {
			if len(suggestions) >= maxReallocations {
				return suggestions
			}

			item := ""
			if len(src.WorkItemIDs) > 0 {
				item = src.WorkItemIDs[0]
			}
			score := clampScore(25 + src.OpenItems*4 + tgt.IdleDays*3)

			evidence := []string{
				fmt.Sprintf("source:%s", src.UserID),
				fmt.Sprintf("target:%s", tgt.UserID),
				fmt.Sprintf("open_items:%d", src.OpenItems),
				fmt.Sprintf("idle_days:%d", tgt.IdleDays),
			}
			rec := fmt.Sprintf("Reassign one open item from %s to %s", src.MemberName, tgt.MemberName)
			if item != "" {
				evidence = append(evidence, fmt.Sprintf("item:%s", item))
				rec = fmt.Sprintf("Reassign %s from %s to %s", item, src.MemberName, tgt.MemberName)
			}
			reason := fmt.Sprintf("%s carries %d open items while %s has been idle for %d days",
				src.MemberName, src.OpenItems, tgt.MemberName, tgt.IdleDays)

			suggestions = append(suggestions, Suggestion{
				Type:              TypeReallocation,
				Recommendation:    rec,
				Reason:            reason,
				Evidence:          evidence,
				ImpactEstimate:    "Rebalances one work item and shortens the critical path",
				ImpactScore:       score,
				ImpactExplanation: fmt.Sprintf("Scored %d from %d open source items and %d target idle days", score, src.OpenItems, tgt.IdleDays),
				FormulaBasis:      "impact = 25 + sourceOpenItems*4 + targetIdleDays*3, bounded 0-100",
				RequiresRole:      RoleLeadership,
			})
		}
	}
	return suggestions
}

// ScopeAdjustment proposes deferring low-priority stale work when the
// delivery projection overruns the sprint. Requires a PO or admin caller.
// The "deliveryRisk or LOW forecast" trigger collapses to deliveryRisk in
// practice, since the LOW-confidence gate below suppresses the other arm:
// scope cuts only happen on MEDIUM/HIGH-confidence data.
func ScopeAdjustment(ctx *Context) []Suggestion {
	if ctx.ForecastConfidence == scoring.ConfidenceLow {
		return nil
	}
	if ctx.CallerRole != CallerPO && ctx.CallerRole != CallerAdmin {
		return nil
	}
	if !ctx.DeliveryRisk {
		return nil
	}
	if !hasDriver(ctx.RiskDrivers, scoring.DriverDeliveryRisk) && !hasDriver(ctx.RiskDrivers, scoring.DriverEndOfSprintPressure) {
		return nil
	}

	var candidates []aggregate.StaleIssue
	for _, issue := range ctx.StaleIssues {
		if issue.Priority == "LOW" {
			candidates = append(candidates, issue)
			if len(candidates) == maxScopeCandidates {
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	score := 35 + len(candidates)*12
	if ctx.DeliveryRisk {
		score += 20
	}
	score = clampScore(score)

	evidence := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		evidence = append(evidence, fmt.Sprintf("issue:%s", c.IssueID))
	}
	evidence = append(evidence, fmt.Sprintf("delivery_risk:%t", ctx.DeliveryRisk))

	return []Suggestion{{
		Type:              TypeScopeAdjustment,
		Recommendation:    fmt.Sprintf("Defer %d low-priority stale item(s) out of the sprint to protect the delivery date", len(candidates)),
		Reason:            "The velocity projection overruns the sprint and low-priority work has gone stale",
		Evidence:          evidence,
		ImpactEstimate:    "Frees capacity for at-risk committed work",
		ImpactScore:       score,
		ImpactExplanation: fmt.Sprintf("Scored %d from %d deferral candidates with delivery risk %t", score, len(candidates), ctx.DeliveryRisk),
		FormulaBasis:      "impact = 35 + candidateCount*12 + (deliveryRisk ? 20 : 0)",
		RequiresRole:      RolePOOrAdmin,
	}}
}

// MeetingOptimization targets the standup itself: thin updates or blockers
// that survive day after day. Deliberately not gated on forecast confidence;
// a broken standup is exactly when the data is least trustworthy.
func MeetingOptimization(ctx *Context) []Suggestion {
	var suggestions []Suggestion

	if ctx.QualityScore != nil && *ctx.QualityScore < 60 {
		score := clampScore(40 + int(60-*ctx.QualityScore))
		suggestions = append(suggestions, Suggestion{
			Type:              TypeMeetingOptimization,
			Recommendation:    "Restructure the standup to require concrete progress notes and linked work items",
			Reason:            fmt.Sprintf("Standup quality is %.0f, below the 60-point bar", *ctx.QualityScore),
			Evidence:          []string{fmt.Sprintf("quality:%.0f", *ctx.QualityScore)},
			ImpactEstimate:    "Richer updates make every downstream signal more reliable",
			ImpactScore:       score,
			ImpactExplanation: fmt.Sprintf("Scored %d from the %.0f-point quality shortfall", score, 60-*ctx.QualityScore),
			FormulaBasis:      "impact = 40 + (60 - qualityScore)",
			RequiresRole:      RoleLeadership,
		})
	}

	if ctx.PersistentBlockers > 0 && len(suggestions) < maxMeetingSuggestions {
		score := clampScore(35 + ctx.PersistentBlockers*10)
		suggestions = append(suggestions, Suggestion{
			Type:              TypeMeetingOptimization,
			Recommendation:    "Add a dedicated blocker-resolution slot to the standup agenda",
			Reason:            fmt.Sprintf("%d blocker(s) have persisted for more than two days", ctx.PersistentBlockers),
			Evidence:          []string{fmt.Sprintf("clusters:%d", ctx.PersistentBlockers)},
			ImpactEstimate:    "Escalating repeat blockers in the meeting shortens their lifetime",
			ImpactScore:       score,
			ImpactExplanation: fmt.Sprintf("Scored %d from %d persistent blocker cluster(s)", score, ctx.PersistentBlockers),
			FormulaBasis:      "impact = 35 + persistentBlockers*10",
			RequiresRole:      RoleLeadership,
		})
	}

	if len(suggestions) > maxMeetingSuggestions {
		suggestions = suggestions[:maxMeetingSuggestions]
	}
	return suggestions
}

func hasDriver(drivers []scoring.RiskDriver, driverType string) bool {
	for _, d := range drivers {
		if d.Type == driverType {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
