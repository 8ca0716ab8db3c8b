package guidance

import (
	"strings"
	"testing"
	"time"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

func builderContext() *Context {
	return &Context{
		ForecastConfidence: scoring.ConfidenceHigh,
		CapacitySignals: []aggregate.CapacitySignal{
			overloaded("u1", "Priya", 7),
			idle("u2", "Marco", 6),
		},
		PersistentBlockers: 2,
		UnresolvedActions:  3,
		Now:                time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Enabled:            true,
	}
}

func TestBuild_AssignsStableIDs(t *testing.T) {
	first := Build(builderContext())
	second := Build(builderContext())

	if len(first.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	for i := range first.Suggestions {
		if first.Suggestions[i].ID == "" {
			t.Fatal("expected non-empty id")
		}
		if first.Suggestions[i].ID != second.Suggestions[i].ID {
			t.Errorf("expected stable ids, got %q then %q", first.Suggestions[i].ID, second.Suggestions[i].ID)
		}
		if len(first.Suggestions[i].ID) != idLength {
			t.Errorf("expected %d-char id, got %q", idLength, first.Suggestions[i].ID)
		}
	}
}

func TestBuild_DisabledStillFillsExecutive(t *testing.T) {
	ctx := builderContext()
	ctx.Enabled = false
	ctx.RiskDrivers = []scoring.RiskDriver{
		{Type: scoring.DriverBlockerCluster, Impact: -30, Evidence: []string{"u1"}},
	}

	result := Build(ctx)
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected no suggestions when disabled, got %d", len(result.Suggestions))
	}
	if len(result.Executive.TopRisks) != 1 {
		t.Errorf("expected executive risks regardless of the flag, got %d", len(result.Executive.TopRisks))
	}
	if len(result.Executive.TodaysFocus) != 3 {
		t.Errorf("expected 3 focus lines, got %d", len(result.Executive.TodaysFocus))
	}
}

func TestBuild_DismissalSuppressesUntilExpiry(t *testing.T) {
	ctx := builderContext()
	baseline := Build(ctx)
	if len(baseline.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	target := baseline.Suggestions[0]

	until := ctx.Now.AddDate(0, 0, 2)
	ctx.Lifecycle = map[string]LifecycleState{
		target.ID: {State: StateDismissed, DismissedUntil: &until},
	}

	result := Build(ctx)
	for _, s := range result.Suggestions {
		if s.ID == target.ID {
			t.Fatalf("expected %q suppressed while dismissed, still present", target.ID)
		}
	}

	// Once the window lapses the suggestion surfaces again, still DISMISSED.
	expired := ctx.Now.AddDate(0, 0, -1)
	ctx.Lifecycle[target.ID] = LifecycleState{State: StateDismissed, DismissedUntil: &expired}

	result = Build(ctx)
	found := false
	for _, s := range result.Suggestions {
		if s.ID == target.ID {
			found = true
			if s.State != StateDismissed {
				t.Errorf("expected state carried through, got %q", s.State)
			}
		}
	}
	if !found {
		t.Fatal("expected suggestion to resurface after expiry")
	}
}

func TestBuild_SnoozeSuppressesUntilExpiry(t *testing.T) {
	ctx := builderContext()
	baseline := Build(ctx)
	target := baseline.Suggestions[0]

	until := ctx.Now.Add(24 * time.Hour)
	ctx.Lifecycle = map[string]LifecycleState{
		target.ID: {State: StateSnoozed, SnoozedUntil: &until},
	}

	result := Build(ctx)
	for _, s := range result.Suggestions {
		if s.ID == target.ID {
			t.Fatalf("expected snoozed suggestion suppressed")
		}
	}
}

func TestBuild_AcceptedStillSurfaces(t *testing.T) {
	ctx := builderContext()
	baseline := Build(ctx)
	target := baseline.Suggestions[0]

	ctx.Lifecycle = map[string]LifecycleState{
		target.ID: {State: StateAccepted},
	}

	result := Build(ctx)
	found := false
	for _, s := range result.Suggestions {
		if s.ID == target.ID {
			found = true
			if s.State != StateAccepted {
				t.Errorf("expected ACCEPTED state, got %q", s.State)
			}
		}
	}
	if !found {
		t.Fatal("expected accepted suggestion to keep surfacing")
	}
}

func TestBuild_LowConfidenceLabel(t *testing.T) {
	ctx := builderContext()
	ctx.ForecastConfidence = scoring.ConfidenceLow

	// Only meeting optimization survives the LOW gate.
	result := Build(ctx)
	if len(result.Suggestions) == 0 {
		t.Fatal("expected meeting suggestions under LOW confidence")
	}
	for _, s := range result.Suggestions {
		if s.Type != TypeMeetingOptimization {
			t.Errorf("expected only meeting optimization, got %q", s.Type)
		}
		if s.ConfidenceLabel != LabelLowConfidence {
			t.Errorf("expected LOW_CONFIDENCE label, got %q", s.ConfidenceLabel)
		}
	}
}

func TestBuild_NoLabelOnHighConfidence(t *testing.T) {
	result := Build(builderContext())
	for _, s := range result.Suggestions {
		if s.ConfidenceLabel != "" {
			t.Errorf("expected no label, got %q", s.ConfidenceLabel)
		}
	}
}

func TestBuild_ExecutiveTopActionsAndAdjustment(t *testing.T) {
	result := Build(builderContext())
	if len(result.Suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if result.Executive.SuggestedStructuralAdjustment != result.Suggestions[0].Recommendation {
		t.Errorf("expected first suggestion as the structural adjustment")
	}
	if len(result.Executive.TopActions) == 0 || result.Executive.TopActions[0] != result.Suggestions[0].Recommendation {
		t.Errorf("expected top actions to mirror surviving suggestions")
	}
}

func TestDuplicatesOpenAction_FollowUpText(t *testing.T) {
	open := lowercaseSet([]string{"A1"})
	tests := []struct {
		name string
		s    Suggestion
		want bool
	}{
		{"follow up text", Suggestion{Recommendation: "Follow up with the infra team"}, true},
		{"hyphenated", Suggestion{Recommendation: "Schedule a follow-up on the API keys"}, true},
		{"action evidence", Suggestion{Recommendation: "Escalate", Evidence: []string{"action:a1"}}, true},
		{"case-insensitive evidence", Suggestion{Recommendation: "Escalate", Evidence: []string{"ACTION:A1"}}, true},
		{"closed action", Suggestion{Recommendation: "Escalate", Evidence: []string{"action:a2"}}, false},
		{"plain", Suggestion{Recommendation: "Reassign one item"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := duplicatesOpenAction(tc.s, open); got != tc.want {
				t.Errorf("duplicatesOpenAction() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestTopRisks_RankedByWeightTimesImpact(t *testing.T) {
	// Weighted: delivery 6*12=72, stale 2*20=40, standup 3*10=30; the
	// positive overlap credit is excluded.
	drivers := []scoring.RiskDriver{
		{Type: scoring.DriverStaleWork, Impact: -20, Evidence: []string{"i1"}},
		{Type: scoring.DriverDeliveryRisk, Impact: -12, Evidence: []string{"proj"}},
		{Type: scoring.DriverMissingStandup, Impact: -10, Evidence: []string{"u2"}},
		{Type: scoring.DriverOverlapAdjustment, Impact: 5},
	}

	risks := topRisks(drivers)
	if len(risks) != 3 {
		t.Fatalf("expected 3 risks, got %d", len(risks))
	}
	if !strings.HasPrefix(risks[0], "DELIVERY_RISK (-12)") {
		t.Errorf("expected delivery risk first, got %q", risks[0])
	}
	if !strings.Contains(risks[0], "proj") {
		t.Errorf("expected evidence rendered, got %q", risks[0])
	}
	if !strings.HasPrefix(risks[1], "STALE_WORK") {
		t.Errorf("expected stale work second, got %q", risks[1])
	}
}

func TestTodaysFocus_Branches(t *testing.T) {
	calm := todaysFocus(&Context{})
	if len(calm) != 3 {
		t.Fatalf("expected 3 focus lines, got %d", len(calm))
	}
	if !strings.Contains(calm[0], "on track") {
		t.Errorf("expected on-track line, got %q", calm[0])
	}

	busy := todaysFocus(&Context{DeliveryRisk: true, UnresolvedActions: 4, PersistentBlockers: 2})
	if !strings.Contains(busy[0], "Re-sequence") {
		t.Errorf("expected re-sequence line, got %q", busy[0])
	}
	if !strings.Contains(busy[1], "4 open action") {
		t.Errorf("expected action count, got %q", busy[1])
	}
	if !strings.Contains(busy[2], "2 blocker") {
		t.Errorf("expected blocker count, got %q", busy[2])
	}
}

func TestSuggestionID_StableAndEvidenceBounded(t *testing.T) {
	base := SuggestionID("REALLOCATION", "Reassign wa from Priya to Marco", []string{"a", "b", "c", "d"})
	if len(base) != idLength {
		t.Fatalf("expected %d chars, got %d", idLength, len(base))
	}

	// Trailing evidence beyond the first four tokens does not change the id.
	extended := SuggestionID("REALLOCATION", "Reassign wa from Priya to Marco", []string{"a", "b", "c", "d", "e", "f"})
	if base != extended {
		t.Error("expected id to ignore evidence beyond the first four tokens")
	}

	// Leading evidence does.
	changed := SuggestionID("REALLOCATION", "Reassign wa from Priya to Marco", []string{"x", "b", "c", "d"})
	if base == changed {
		t.Error("expected id to change with leading evidence")
	}

	if SuggestionID("SCOPE_ADJUSTMENT", "Reassign wa from Priya to Marco", []string{"a", "b", "c", "d"}) == base {
		t.Error("expected id to change with type")
	}
}
