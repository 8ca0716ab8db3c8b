package guidance

import (
	"strings"

	"github.com/cadencehq/sprintpulse/internal/scoring"
)

// rules in evaluation order. Order matters for the executive view: the
// first surviving suggestion becomes the suggested structural adjustment.
var rules = []Rule{
	Reallocation,
	ScopeAdjustment,
	MeetingOptimization,
}

// Build runs the full guidance cycle: rule evaluation, action-item
// deduplication, identity assignment, lifecycle suppression, and the
// executive view. Pure and deterministic for a fixed Context.
func Build(ctx *Context) Result {
	var surviving []Suggestion

	if ctx.Enabled {
		var candidates []Suggestion
		for _, rule := range rules {
			candidates = append(candidates, rule(ctx)...)
		}

		openActions := lowercaseSet(ctx.OpenActionIDs)
		for _, s := range candidates {
			if duplicatesOpenAction(s, openActions) {
				continue
			}
			s.ID = SuggestionID(s.Type, s.Recommendation, s.Evidence)
			if ctx.ForecastConfidence == scoring.ConfidenceLow {
				s.ConfidenceLabel = LabelLowConfidence
			}

			state, suppressed := applyLifecycle(ctx, s.ID)
			if suppressed {
				continue
			}
			s.State = state.State
			s.DismissedUntil = state.DismissedUntil
			s.SnoozedUntil = state.SnoozedUntil
			surviving = append(surviving, s)
		}
	}

	return Result{
		Suggestions: surviving,
		Executive:   buildExecutiveView(ctx, surviving),
	}
}

// duplicatesOpenAction drops suggestions the team has already captured as an
// action item: either the recommendation reads like a follow-up, or its
// evidence points at an action id that is still open.
func duplicatesOpenAction(s Suggestion, openActions map[string]bool) bool {
	lowered := strings.ToLower(s.Recommendation)
	if strings.Contains(lowered, "follow up") || strings.Contains(lowered, "follow-up") {
		return true
	}
	for _, token := range s.Evidence {
		rest, ok := strings.CutPrefix(strings.ToLower(token), "action:")
		if ok && openActions[rest] {
			return true
		}
	}
	return false
}

// applyLifecycle resolves the persisted state for a suggestion id. A
// dismissal or snooze with an unexpired window suppresses the suggestion;
// once the window lapses it surfaces again if its condition still holds.
func applyLifecycle(ctx *Context, id string) (LifecycleState, bool) {
	state, ok := ctx.Lifecycle[id]
	if !ok {
		return LifecycleState{State: StateOpen}, false
	}
	switch state.State {
	case StateDismissed:
		if state.DismissedUntil != nil && state.DismissedUntil.After(ctx.Now) {
			return state, true
		}
	case StateSnoozed:
		if state.SnoozedUntil != nil && state.SnoozedUntil.After(ctx.Now) {
			return state, true
		}
	}
	if state.State == "" {
		state.State = StateOpen
	}
	return state, false
}

func lowercaseSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[strings.ToLower(id)] = true
	}
	return set
}
