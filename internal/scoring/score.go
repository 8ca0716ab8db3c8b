package scoring

import (
	"fmt"
	"math"
)

// Penalty and threshold constants for ModelVersion. Changing any of these
// requires a version bump.
const (
	baseScore = 100

	blockerPenaltyWeight    = 15
	blockerRateFloor        = 0.6
	standupPenaltyWeight    = 10
	standupRateFloor        = 0.5
	stalePenaltyWeight      = 3
	staleRateFloor          = 0.7
	stalePenaltyCap         = 20
	lowQualityThreshold     = 60
	lowQualityPenalty       = 10
	unresolvedThreshold     = 5
	unresolvedPenaltyWeight = 10
	unresolvedRateFloor     = 0.5
	pressureDaysThreshold   = 3
	pressureActionThreshold = 3
	pressurePenalty         = 8

	overlapCreditMin = 2
	overlapCreditMax = 8

	rateCap = 1.5

	greenThreshold  = 80
	yellowThreshold = 60

	confidenceHighThreshold   = 0.75
	confidenceMediumThreshold = 0.5
)

// DefaultOverlapCreditMultiplier scales the overlap de-duplication credit.
// Exposed as an option because the credit is a heuristic correction, not a
// principled model.
const DefaultOverlapCreditMultiplier = 0.12

// Options carries the tunable parts of the formula set.
type Options struct {
	// OverlapCreditMultiplier scales the credit applied when blocker, stale
	// and unresolved penalties all fire on the same day.
	OverlapCreditMultiplier float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{OverlapCreditMultiplier: DefaultOverlapCreditMultiplier}
}

// ComputeSprintHealthScore maps one day's signal counts to the composite
// health score with default tuning.
func ComputeSprintHealthScore(in SprintHealthInput) SprintHealthComputation {
	return ComputeSprintHealthScoreWith(in, DefaultOptions())
}

// ComputeSprintHealthScoreWith is ComputeSprintHealthScore with explicit
// options. Out-of-domain inputs (negative counts, zero team size) are clamped
// at this boundary rather than rejected; the scorer never fails.
func ComputeSprintHealthScoreWith(in SprintHealthInput, opts Options) SprintHealthComputation {
	in = clampInput(in)
	if opts.OverlapCreditMultiplier <= 0 {
		opts.OverlapCreditMultiplier = DefaultOverlapCreditMultiplier
	}

	team := float64(in.TeamSize)
	tasks := float64(in.ActiveTaskCount)

	metrics := NormalizedMetrics{
		BlockerRatePerMember:           normalizeRate(float64(in.PersistentBlockersOver2Days), team),
		MissingStandupRate:             normalizeRate(float64(in.MissingStandupMembers), team),
		StaleWorkRatePerActiveTask:     normalizeRate(float64(in.StaleWorkCount), tasks),
		UnresolvedActionsRatePerMember: normalizeRate(float64(in.UnresolvedActions), team),
	}

	breakdown := []BreakdownEntry{{Label: "Base score", Impact: baseScore}}
	var drivers []RiskDriver

	apply := func(label, driverType string, penalty int, evidence ...string) {
		breakdown = append(breakdown, BreakdownEntry{Label: label, Impact: -penalty})
		drivers = append(drivers, RiskDriver{Type: driverType, Impact: -penalty, Evidence: evidence})
	}

	// Persistent blocker clusters.
	blockerPenalty := roundHalf(float64(in.PersistentBlockersOver2Days) * blockerPenaltyWeight * (blockerRateFloor + metrics.BlockerRatePerMember))
	if blockerPenalty > 0 {
		apply("Persistent blockers", DriverBlockerCluster, blockerPenalty,
			fmt.Sprintf("clusters:%d", in.PersistentBlockersOver2Days),
			fmt.Sprintf("rate:%.2f", metrics.BlockerRatePerMember))
	}

	// Missing standups.
	standupPenalty := roundHalf(float64(in.MissingStandupMembers) * standupPenaltyWeight * (standupRateFloor + metrics.MissingStandupRate))
	if standupPenalty > 0 {
		apply("Missing standups", DriverMissingStandup, standupPenalty,
			fmt.Sprintf("members:%d", in.MissingStandupMembers),
			fmt.Sprintf("rate:%.2f", metrics.MissingStandupRate))
	}

	// Stale work, capped so a backlog of untouched items cannot dominate.
	stalePenalty := roundHalf(float64(in.StaleWorkCount) * stalePenaltyWeight * (staleRateFloor + metrics.StaleWorkRatePerActiveTask))
	if stalePenalty > stalePenaltyCap {
		stalePenalty = stalePenaltyCap
	}
	if stalePenalty > 0 {
		apply("Stale work", DriverStaleWork, stalePenalty,
			fmt.Sprintf("items:%d", in.StaleWorkCount),
			fmt.Sprintf("rate:%.2f", metrics.StaleWorkRatePerActiveTask))
	}

	// Low standup quality.
	if in.QualityScore != nil && *in.QualityScore < lowQualityThreshold {
		apply("Low quality input", DriverLowQualityInput, lowQualityPenalty,
			fmt.Sprintf("quality:%.0f", *in.QualityScore))
	}

	// Unresolved action backlog.
	if in.UnresolvedActions > unresolvedThreshold {
		p := roundHalf(unresolvedPenaltyWeight * (unresolvedRateFloor + metrics.UnresolvedActionsRatePerMember))
		apply("Unresolved actions", DriverUnresolvedActions, p,
			fmt.Sprintf("count:%d", in.UnresolvedActions),
			fmt.Sprintf("rate:%.2f", metrics.UnresolvedActionsRatePerMember))
	}

	// End-of-sprint pressure.
	if in.DaysRemainingInSprint != nil && *in.DaysRemainingInSprint <= pressureDaysThreshold && in.UnresolvedActions >= pressureActionThreshold {
		apply("End-of-sprint pressure", DriverEndOfSprintPressure, pressurePenalty,
			fmt.Sprintf("days_remaining:%d", *in.DaysRemainingInSprint),
			fmt.Sprintf("unresolved:%d", in.UnresolvedActions))
	}

	// Overlap de-duplication credit. A single blocked task can trip the
	// blocker, stale-work, and unresolved-action penalties at once; when all
	// three fire, hand back a slice of the doubled-up penalty. This is an
	// approximate correction, not a principled model.
	if blockerPenalty > 0 && stalePenalty > 0 && in.UnresolvedActions > 0 {
		credit := roundHalf(float64(stalePenalty+blockerPenalty) * opts.OverlapCreditMultiplier)
		if credit < overlapCreditMin {
			credit = overlapCreditMin
		}
		if credit > overlapCreditMax {
			credit = overlapCreditMax
		}
		breakdown = append(breakdown, BreakdownEntry{Label: "Overlap adjustment", Impact: credit})
		drivers = append(drivers, RiskDriver{
			Type:     DriverOverlapAdjustment,
			Impact:   credit,
			Evidence: []string{fmt.Sprintf("credit:%d", credit)},
		})
	}

	total := 0
	for _, b := range breakdown {
		total += b.Impact
	}
	health := clampInt(total, 0, 100)

	success := roundHalf(clampFloat(float64(health)/100, 0, 1) * 100)
	basis := confidenceBasisFor(metrics, drivers, in.TeamSize)

	return SprintHealthComputation{
		HealthScore:     health,
		Status:          statusFor(health),
		ConfidenceLevel: confidenceFor(basis),
		ConfidenceBasis: basis,
		RiskDrivers:     drivers,
		ScoreBreakdown:  breakdown,
		Probabilities:   Probabilities{SprintSuccess: success, Spillover: 100 - success},
		ProbabilityModel: ProbabilityModel{
			Name:    "linear-health-projection",
			Formula: "sprintSuccess = round(clamp(healthScore/100, 0, 1) * 100); spillover = 100 - sprintSuccess",
		},
		NormalizedMetrics:   metrics,
		ScoringModelVersion: ModelVersion,
	}
}

// clampInput enforces the documented input domain: counts are non-negative,
// divisors are floored at 1, quality stays in [0, 100].
func clampInput(in SprintHealthInput) SprintHealthInput {
	if in.PersistentBlockersOver2Days < 0 {
		in.PersistentBlockersOver2Days = 0
	}
	if in.MissingStandupMembers < 0 {
		in.MissingStandupMembers = 0
	}
	if in.StaleWorkCount < 0 {
		in.StaleWorkCount = 0
	}
	if in.UnresolvedActions < 0 {
		in.UnresolvedActions = 0
	}
	if in.TeamSize < 1 {
		in.TeamSize = 1
	}
	if in.ActiveTaskCount < 1 {
		in.ActiveTaskCount = 1
	}
	if in.QualityScore != nil {
		q := clampFloat(*in.QualityScore, 0, 100)
		in.QualityScore = &q
	}
	return in
}

func statusFor(health int) Status {
	switch {
	case health >= greenThreshold:
		return StatusGreen
	case health >= yellowThreshold:
		return StatusYellow
	default:
		return StatusRed
	}
}

// confidenceBasisFor derives the confidence components. Data completeness
// falls with missing standups; signal stability falls when one penalty
// dominates the total (a concentrated signal is easier to misread).
func confidenceBasisFor(metrics NormalizedMetrics, drivers []RiskDriver, teamSize int) ConfidenceBasis {
	var total, maxSingle int
	for _, d := range drivers {
		if d.Impact >= 0 {
			continue
		}
		p := -d.Impact
		total += p
		if p > maxSingle {
			maxSingle = p
		}
	}
	denom := total
	if denom < 1 {
		denom = 1
	}
	concentration := float64(maxSingle) / float64(denom)

	return ConfidenceBasis{
		DataCompleteness: clampFloat(1-metrics.MissingStandupRate*0.8, 0, 1),
		SignalStability:  clampFloat(1-concentration*0.5, 0, 1),
		SampleSize:       teamSize,
	}
}

func confidenceFor(basis ConfidenceBasis) Confidence {
	weighted := basis.DataCompleteness*0.45 +
		basis.SignalStability*0.35 +
		clampFloat(float64(basis.SampleSize)/8, 0, 1)*0.2
	switch {
	case weighted >= confidenceHighThreshold:
		return ConfidenceHigh
	case weighted >= confidenceMediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// normalizeRate converts a raw count to a per-denominator rate clamped to
// [0, rateCap]. The denominator is floored at 1.
func normalizeRate(count, denom float64) float64 {
	if denom < 1 {
		denom = 1
	}
	return clampFloat(count/denom, 0, rateCap)
}

// roundHalf rounds half up, matching JavaScript Math.round semantics for the
// non-negative magnitudes used here.
func roundHalf(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
