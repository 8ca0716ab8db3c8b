package aggregate

import (
	"math"
	"time"

	"github.com/cadencehq/sprintpulse/internal/activity"
)

// velocityDays is the trailing window for the completion-rate average.
const velocityDays = 7

// minPerDay floors the projection divisor so a stalled team still gets a
// finite (if distant) completion date.
const minPerDay = 0.1

// Remaining-work weights: heavier issue types and older items push the
// projection out.
const (
	weightBug     = 1.1
	weightStory   = 1.35
	weightDefault = 1.0
)

// ComputeVelocity averages DONE transitions per day over the trailing
// velocityDays ending at dayEnd and scores how stable that rate is
// (1 - stddev/mean, bounded to [0,1]).
func ComputeVelocity(transitions []activity.Transition, dayEnd time.Time) (avgPerDay, stability float64) {
	perDay := make([]float64, velocityDays)
	start := dayEnd.AddDate(0, 0, -velocityDays)

	for _, t := range transitions {
		if t.Field != activity.FieldStatus || t.NewValue != activity.StatusDone {
			continue
		}
		if t.CreatedAt.Before(start) || !t.CreatedAt.Before(dayEnd) {
			continue
		}
		idx := int(t.CreatedAt.Sub(start).Hours() / 24)
		if idx >= 0 && idx < velocityDays {
			perDay[idx]++
		}
	}

	var sum float64
	for _, v := range perDay {
		sum += v
	}
	mean := sum / velocityDays
	if mean == 0 {
		return 0, 0
	}

	var variance float64
	for _, v := range perDay {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / velocityDays)

	stability = 1 - stddev/mean
	if stability < 0 {
		stability = 0
	}
	if stability > 1 {
		stability = 1
	}
	return mean, stability
}

// WeightedRemainingWork sums the type- and age-weighted cost of the open
// linked issues plus one unit per linked research item (research has no
// tracked type or age).
func WeightedRemainingWork(linked []activity.Issue, researchIDs []string, now time.Time) float64 {
	var total float64
	for _, issue := range linked {
		if !issue.Open() {
			continue
		}
		total += typeWeight(issue.Type) * ageWeight(issue.CreatedAt, now)
	}
	return total + float64(len(researchIDs))*weightDefault
}

// ProjectCompletion estimates the completion date from the weighted backlog
// and the trailing daily completion rate.
func ProjectCompletion(weightedRemaining, avgPerDay float64, today time.Time) time.Time {
	rate := avgPerDay
	if rate < minPerDay {
		rate = minPerDay
	}
	days := int(math.Ceil(weightedRemaining / rate))
	return today.AddDate(0, 0, days)
}

func typeWeight(issueType string) float64 {
	switch issueType {
	case activity.TypeBug:
		return weightBug
	case activity.TypeStory:
		return weightStory
	default:
		return weightDefault
	}
}

// ageWeight steps up at 5, 10, and 21 days of age.
func ageWeight(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	switch {
	case age >= 21*24*time.Hour:
		return 1.4
	case age >= 10*24*time.Hour:
		return 1.2
	case age >= 5*24*time.Hour:
		return 1.1
	default:
		return 1.0
	}
}
