package aggregate

import (
	"math"
	"strings"
	"time"

	"github.com/cadencehq/sprintpulse/internal/activity"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

// Forecast confidence blend weights and gates.
const (
	forecastWeightQuality    = 0.4
	forecastWeightStability  = 0.3
	forecastWeightVolatility = 0.15
	forecastWeightCoverage   = 0.15

	churnPenaltyCap = 0.2

	forecastMinSampledDays  = 5
	forecastHighThreshold   = 0.75
	forecastMediumThreshold = 0.55

	volatilityWindowDays = 30
)

// ComputeForecast blends data quality, velocity stability, blocker
// volatility, and linked-work coverage into a confidence level for the
// delivery projection, minus a scope-churn penalty. HIGH and MEDIUM both
// require enough sampled days; a thin window is LOW regardless of the blend.
func ComputeForecast(
	quality *float64,
	velocityStability float64,
	blockerVolatility float64,
	linkedCoverage float64,
	churn ScopeChurn,
	sampledDays int,
) Forecast {
	dq := 0.0
	if quality != nil {
		dq = *quality / 100
	}

	totalWork := churn.TotalWork
	if totalWork < 1 {
		totalWork = 1
	}
	churnRatio := float64(churn.ItemsAdded+churn.ItemsRemoved) / float64(totalWork)
	penalty := churnPenaltyCap * churnRatio
	if penalty > churnPenaltyCap {
		penalty = churnPenaltyCap
	}

	blended := dq*forecastWeightQuality +
		velocityStability*forecastWeightStability +
		blockerVolatility*forecastWeightVolatility +
		linkedCoverage*forecastWeightCoverage -
		penalty

	confidence := scoring.ConfidenceLow
	if sampledDays >= forecastMinSampledDays {
		switch {
		case blended >= forecastHighThreshold:
			confidence = scoring.ConfidenceHigh
		case blended >= forecastMediumThreshold:
			confidence = scoring.ConfidenceMedium
		}
	}

	return Forecast{
		Confidence:         confidence,
		BlendedScore:       blended,
		DataQualityScore:   dq,
		VelocityStability:  velocityStability,
		BlockerVolatility:  blockerVolatility,
		LinkedWorkCoverage: linkedCoverage,
		ScopeChurnPenalty:  penalty,
		SampledDays:        sampledDays,
	}
}

// BlockerVolatility scores how erratic the daily blocker load has been over
// the trailing 30 days: 1 means a steady (predictable) level, 0 means wild
// swings.
func BlockerVolatility(entries []activity.StandupEntry, dayEnd time.Time) float64 {
	perDay := make([]float64, volatilityWindowDays)
	start := dayEnd.AddDate(0, 0, -volatilityWindowDays)

	for _, e := range entries {
		if strings.TrimSpace(e.Blockers) == "" {
			continue
		}
		if e.Date.Before(start) || !e.Date.Before(dayEnd) {
			continue
		}
		idx := int(e.Date.Sub(start).Hours() / 24)
		if idx >= 0 && idx < volatilityWindowDays {
			perDay[idx]++
		}
	}

	var sum float64
	for _, v := range perDay {
		sum += v
	}
	mean := sum / volatilityWindowDays
	if mean == 0 {
		return 1 // no blockers at all is as steady as it gets
	}

	var variance float64
	for _, v := range perDay {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / volatilityWindowDays)

	denom := mean
	if denom < 1 {
		denom = 1
	}
	ratio := stddev / denom
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}

// LinkedWorkCoverage is the fraction of entries referencing tracked work.
func LinkedWorkCoverage(entries []activity.StandupEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	linked := 0
	for _, e := range entries {
		if e.HasLinkedWork() {
			linked++
		}
	}
	return float64(linked) / float64(len(entries))
}

// SampledDays counts distinct calendar days with at least one standup entry.
func SampledDays(entries []activity.StandupEntry) int {
	days := make(map[string]bool)
	for _, e := range entries {
		days[e.Date.Format("2006-01-02")] = true
	}
	return len(days)
}
