package scoring

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func healthyInput() SprintHealthInput {
	return SprintHealthInput{
		QualityScore:    floatPtr(100),
		TeamSize:        5,
		ActiveTaskCount: 10,
	}
}

func TestComputeSprintHealthScore_AllClear(t *testing.T) {
	result := ComputeSprintHealthScore(healthyInput())

	if result.HealthScore != 100 {
		t.Errorf("expected health 100, got %d", result.HealthScore)
	}
	if result.Status != StatusGreen {
		t.Errorf("expected GREEN, got %s", result.Status)
	}
	if len(result.RiskDrivers) != 0 {
		t.Errorf("expected no risk drivers, got %d", len(result.RiskDrivers))
	}
	if len(result.ScoreBreakdown) != 1 || result.ScoreBreakdown[0].Label != "Base score" {
		t.Errorf("expected only the base score entry, got %+v", result.ScoreBreakdown)
	}
	if result.Probabilities.SprintSuccess != 100 || result.Probabilities.Spillover != 0 {
		t.Errorf("expected 100/0 probabilities, got %+v", result.Probabilities)
	}
}

func TestComputeSprintHealthScore_TroubledSprint(t *testing.T) {
	in := SprintHealthInput{
		PersistentBlockersOver2Days: 2,
		MissingStandupMembers:       1,
		StaleWorkCount:              3,
		UnresolvedActions:           7,
		QualityScore:                floatPtr(55),
		TeamSize:                    5,
		ActiveTaskCount:             12,
		DaysRemainingInSprint:       intPtr(2),
	}
	result := ComputeSprintHealthScore(in)

	if result.HealthScore >= 70 {
		t.Errorf("expected health < 70, got %d", result.HealthScore)
	}
	if result.Status != StatusRed {
		t.Errorf("expected RED, got %s", result.Status)
	}

	want := []string{
		DriverBlockerCluster,
		DriverMissingStandup,
		DriverStaleWork,
		DriverLowQualityInput,
		DriverUnresolvedActions,
		DriverEndOfSprintPressure,
	}
	got := map[string]bool{}
	for _, d := range result.RiskDrivers {
		got[d.Type] = true
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("expected risk driver %s, got %v", w, result.RiskDrivers)
		}
	}

	// All three overlap conditions hold, so the credit fires too.
	if !got[DriverOverlapAdjustment] {
		t.Errorf("expected overlap adjustment credit, got %v", result.RiskDrivers)
	}
}

func TestComputeSprintHealthScore_ExactPenalties(t *testing.T) {
	in := SprintHealthInput{
		PersistentBlockersOver2Days: 2,
		MissingStandupMembers:       1,
		StaleWorkCount:              3,
		UnresolvedActions:           7,
		QualityScore:                floatPtr(55),
		TeamSize:                    5,
		ActiveTaskCount:             12,
		DaysRemainingInSprint:       intPtr(2),
	}
	result := ComputeSprintHealthScore(in)

	// blocker: round(2*15*(0.6+0.4)) = 30
	// standup: round(1*10*(0.5+0.2)) = 7
	// stale:   min(20, round(3*3*(0.7+0.25))) = 9
	// quality: 10
	// actions: round(10*(0.5+1.4)) = 19
	// pressure: 8
	// credit:  min(8, max(2, round((9+30)*0.12))) = 5
	wantImpacts := []int{100, -30, -7, -9, -10, -19, -8, 5}
	var gotImpacts []int
	for _, b := range result.ScoreBreakdown {
		gotImpacts = append(gotImpacts, b.Impact)
	}
	if !reflect.DeepEqual(gotImpacts, wantImpacts) {
		t.Errorf("breakdown impacts = %v, want %v", gotImpacts, wantImpacts)
	}
	if result.HealthScore != 22 {
		t.Errorf("expected health 22, got %d", result.HealthScore)
	}
}

func TestComputeSprintHealthScore_ProbabilitiesSumTo100(t *testing.T) {
	inputs := []SprintHealthInput{
		healthyInput(),
		{PersistentBlockersOver2Days: 5, TeamSize: 3, ActiveTaskCount: 4},
		{MissingStandupMembers: 10, StaleWorkCount: 20, UnresolvedActions: 9, TeamSize: 4, ActiveTaskCount: 6},
		{TeamSize: 1, ActiveTaskCount: 1, UnresolvedActions: 100},
	}
	for i, in := range inputs {
		r := ComputeSprintHealthScore(in)
		if r.Probabilities.SprintSuccess+r.Probabilities.Spillover != 100 {
			t.Errorf("input %d: probabilities sum to %d", i, r.Probabilities.SprintSuccess+r.Probabilities.Spillover)
		}
		if r.HealthScore < 0 || r.HealthScore > 100 {
			t.Errorf("input %d: health %d out of range", i, r.HealthScore)
		}
	}
}

func TestComputeSprintHealthScore_StatusThresholds(t *testing.T) {
	tests := []struct {
		health int
		want   Status
	}{
		{100, StatusGreen}, {80, StatusGreen},
		{79, StatusYellow}, {60, StatusYellow},
		{59, StatusRed}, {0, StatusRed},
	}
	for _, tt := range tests {
		if got := statusFor(tt.health); got != tt.want {
			t.Errorf("statusFor(%d) = %s, want %s", tt.health, got, tt.want)
		}
	}
}

func TestComputeSprintHealthScore_Monotonicity(t *testing.T) {
	base := SprintHealthInput{
		PersistentBlockersOver2Days: 1,
		MissingStandupMembers:       1,
		StaleWorkCount:              2,
		UnresolvedActions:           6,
		TeamSize:                    5,
		ActiveTaskCount:             10,
	}
	baseline := ComputeSprintHealthScore(base).HealthScore

	bump := []func(*SprintHealthInput){
		func(in *SprintHealthInput) { in.PersistentBlockersOver2Days++ },
		func(in *SprintHealthInput) { in.MissingStandupMembers++ },
		func(in *SprintHealthInput) { in.StaleWorkCount++ },
		func(in *SprintHealthInput) { in.UnresolvedActions++ },
	}
	for i, f := range bump {
		in := base
		f(&in)
		got := ComputeSprintHealthScore(in).HealthScore
		if got > baseline {
			t.Errorf("bump %d: health rose from %d to %d", i, baseline, got)
		}
	}
}

func TestComputeSprintHealthScore_SmallerTeamPenalizedHarder(t *testing.T) {
	small := SprintHealthInput{
		PersistentBlockersOver2Days: 2,
		MissingStandupMembers:       2,
		TeamSize:                    3,
		ActiveTaskCount:             10,
	}
	large := small
	large.TeamSize = 20

	smallScore := ComputeSprintHealthScore(small).HealthScore
	largeScore := ComputeSprintHealthScore(large).HealthScore
	if smallScore >= largeScore {
		t.Errorf("expected smaller team to score lower: small=%d large=%d", smallScore, largeScore)
	}
}

func TestComputeSprintHealthScore_Idempotent(t *testing.T) {
	in := SprintHealthInput{
		PersistentBlockersOver2Days: 1,
		StaleWorkCount:              4,
		UnresolvedActions:           6,
		QualityScore:                floatPtr(70),
		TeamSize:                    4,
		ActiveTaskCount:             8,
		DaysRemainingInSprint:       intPtr(5),
	}
	a := ComputeSprintHealthScore(in)
	b := ComputeSprintHealthScore(in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated computation diverged:\n%+v\n%+v", a, b)
	}
}

func TestComputeSprintHealthScore_ClampsMalformedInput(t *testing.T) {
	in := SprintHealthInput{
		PersistentBlockersOver2Days: -3,
		MissingStandupMembers:       -1,
		StaleWorkCount:              -5,
		UnresolvedActions:           -2,
		QualityScore:                floatPtr(250),
		TeamSize:                    0,
		ActiveTaskCount:             -4,
	}
	result := ComputeSprintHealthScore(in)
	if result.HealthScore != 100 {
		t.Errorf("expected negative counts to clamp to a clean score, got %d", result.HealthScore)
	}
	if len(result.RiskDrivers) != 0 {
		t.Errorf("expected no drivers from clamped input, got %v", result.RiskDrivers)
	}
}

func TestComputeSprintHealthScore_StalePenaltyCapped(t *testing.T) {
	in := SprintHealthInput{
		StaleWorkCount:  50,
		TeamSize:        5,
		ActiveTaskCount: 10,
	}
	result := ComputeSprintHealthScore(in)
	for _, b := range result.ScoreBreakdown {
		if b.Label == "Stale work" && -b.Impact > 20 {
			t.Errorf("stale penalty %d exceeds cap", -b.Impact)
		}
	}
}

func TestComputeSprintHealthScore_RateCap(t *testing.T) {
	in := SprintHealthInput{
		UnresolvedActions: 100,
		TeamSize:          2,
		ActiveTaskCount:   1,
	}
	result := ComputeSprintHealthScore(in)
	if result.NormalizedMetrics.UnresolvedActionsRatePerMember != 1.5 {
		t.Errorf("expected rate clamped to 1.5, got %.2f", result.NormalizedMetrics.UnresolvedActionsRatePerMember)
	}
}

func TestComputeSprintHealthScore_LowQualityBoundary(t *testing.T) {
	in := healthyInput()
	in.QualityScore = floatPtr(60)
	result := ComputeSprintHealthScore(in)
	for _, d := range result.RiskDrivers {
		if d.Type == DriverLowQualityInput {
			t.Errorf("quality exactly 60 must not penalize")
		}
	}

	in.QualityScore = floatPtr(59)
	result = ComputeSprintHealthScore(in)
	found := false
	for _, d := range result.RiskDrivers {
		if d.Type == DriverLowQualityInput && d.Impact == -10 {
			found = true
		}
	}
	if !found {
		t.Errorf("quality 59 should apply the fixed 10-point penalty")
	}
}

func TestComputeSprintHealthScore_PressureRequiresBothConditions(t *testing.T) {
	in := healthyInput()
	in.DaysRemainingInSprint = intPtr(2)
	in.UnresolvedActions = 2 // below the action threshold
	result := ComputeSprintHealthScore(in)
	for _, d := range result.RiskDrivers {
		if d.Type == DriverEndOfSprintPressure {
			t.Errorf("pressure penalty must not fire with only %d unresolved actions", in.UnresolvedActions)
		}
	}
}

func TestConfidenceLevel_FullTeamHighConfidence(t *testing.T) {
	result := ComputeSprintHealthScore(SprintHealthInput{TeamSize: 8, ActiveTaskCount: 10})
	if result.ConfidenceLevel != ConfidenceHigh {
		t.Errorf("expected HIGH confidence for complete data, got %s", result.ConfidenceLevel)
	}
	if result.ConfidenceBasis.DataCompleteness != 1 {
		t.Errorf("expected full data completeness, got %.2f", result.ConfidenceBasis.DataCompleteness)
	}
}

func TestConfidenceLevel_MissingStandupsDegradeCompleteness(t *testing.T) {
	result := ComputeSprintHealthScore(SprintHealthInput{
		MissingStandupMembers: 4,
		TeamSize:              4,
		ActiveTaskCount:       5,
	})
	// rate 1.0 -> completeness = 1 - 0.8 = 0.2
	if result.ConfidenceBasis.DataCompleteness > 0.21 {
		t.Errorf("expected degraded completeness, got %.2f", result.ConfidenceBasis.DataCompleteness)
	}
	if result.ConfidenceLevel == ConfidenceHigh {
		t.Errorf("fully absent standups must not yield HIGH confidence")
	}
}

func TestOverlapCredit_Tunable(t *testing.T) {
	in := SprintHealthInput{
		PersistentBlockersOver2Days: 2,
		StaleWorkCount:              3,
		UnresolvedActions:           1,
		TeamSize:                    5,
		ActiveTaskCount:             12,
	}
	def := ComputeSprintHealthScore(in)
	boosted := ComputeSprintHealthScoreWith(in, Options{OverlapCreditMultiplier: 0.25})

	creditOf := func(c SprintHealthComputation) int {
		for _, d := range c.RiskDrivers {
			if d.Type == DriverOverlapAdjustment {
				return d.Impact
			}
		}
		return 0
	}
	if creditOf(def) == 0 {
		t.Fatalf("expected the default credit to fire")
	}
	if creditOf(boosted) <= creditOf(def) {
		t.Errorf("larger multiplier should not shrink the credit: default=%d boosted=%d", creditOf(def), creditOf(boosted))
	}
}

func TestRoundHalf(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.4, 0}, {0.5, 1}, {1.49, 1}, {1.5, 2}, {4.68, 5}, {8.55, 9},
	}
	for _, tt := range tests {
		if got := roundHalf(tt.in); got != tt.want {
			t.Errorf("roundHalf(%.2f) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
