// Package trend smooths sequences of daily health computations into a
// stable trend line with noise-damped delta indicators.
package trend

import (
	"time"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
)

// Direction of the smoothed day-over-day movement.
const (
	Improved  = "IMPROVED"
	Degraded  = "DEGRADED"
	Unchanged = "UNCHANGED"
)

// smoothWindow is the trailing mean window for the trend line. The first
// points of a series average over fewer days.
const smoothWindow = 3

// deadBand suppresses raw risk-count deltas at or below this magnitude, and
// is also the threshold the smoothed delta must clear to register movement.
const deadBand = 2

// DailyPoint is the slice of a daily computation the smoother consumes.
type DailyPoint struct {
	Day                 time.Time `json:"day"`
	HealthScore         int       `json:"health_score"`
	RiskDriverCount     int       `json:"risk_driver_count"` // raw negative drivers
	ProjectedCompletion time.Time `json:"projected_completion"`
}

// Point pairs a raw daily score with its smoothed value.
type Point struct {
	Day           time.Time `json:"day"`
	RawScore      int       `json:"raw_score"`
	SmoothedScore float64   `json:"smoothed_score"`
}

// Report is the smoothed trend over a day sequence, typically 14 days.
type Report struct {
	Points []Point `json:"points"`

	// RiskDeltaSinceYesterday compares raw (unsmoothed) risk-driver
	// counts; deltas inside the dead-band report as zero.
	RiskDeltaSinceYesterday int `json:"risk_delta_since_yesterday"`

	// Indicator classifies the smoothed day-over-day score delta.
	Indicator string `json:"indicator"`

	// SmoothedProjectedCompletion is the mean of the last three days'
	// projected completion timestamps.
	SmoothedProjectedCompletion time.Time `json:"smoothed_projected_completion"`

	// ProjectionDayDelta is the smoothed projection versus the prior
	// day's raw projection, in days.
	ProjectionDayDelta int `json:"projection_day_delta"`
}

// FromComputations adapts aggregator outputs into smoother inputs.
func FromComputations(days []aggregate.DailyComputation) []DailyPoint {
	points := make([]DailyPoint, 0, len(days))
	for _, d := range days {
		negatives := 0
		for _, driver := range d.Computation.RiskDrivers {
			if driver.Impact < 0 {
				negatives++
			}
		}
		points = append(points, DailyPoint{
			Day:                 d.Day,
			HealthScore:         d.Computation.HealthScore,
			RiskDriverCount:     negatives,
			ProjectedCompletion: d.Velocity.ProjectedCompletion,
		})
	}
	return points
}

// Smooth produces the trend report for an ordered (oldest first) day
// sequence. An empty input yields an empty UNCHANGED report.
func Smooth(days []DailyPoint) Report {
	report := Report{Indicator: Unchanged}
	if len(days) == 0 {
		return report
	}

	report.Points = make([]Point, len(days))
	for i, d := range days {
		start := i - smoothWindow + 1
		if start < 0 {
			start = 0
		}
		var sum int
		for _, p := range days[start : i+1] {
			sum += p.HealthScore
		}
		report.Points[i] = Point{
			Day:           d.Day,
			RawScore:      d.HealthScore,
			SmoothedScore: float64(sum) / float64(i+1-start),
		}
	}

	if len(days) >= 2 {
		last := days[len(days)-1]
		prev := days[len(days)-2]

		delta := last.RiskDriverCount - prev.RiskDriverCount
		if delta >= -deadBand && delta <= deadBand {
			delta = 0
		}
		report.RiskDeltaSinceYesterday = delta

		smoothedDelta := report.Points[len(days)-1].SmoothedScore - report.Points[len(days)-2].SmoothedScore
		switch {
		case smoothedDelta > deadBand:
			report.Indicator = Improved
		case smoothedDelta < -deadBand:
			report.Indicator = Degraded
		}
	}

	report.SmoothedProjectedCompletion = meanProjection(days)
	if len(days) >= 2 {
		prior := days[len(days)-2].ProjectedCompletion
		report.ProjectionDayDelta = int(report.SmoothedProjectedCompletion.Sub(prior).Hours() / 24)
	}

	return report
}

// meanProjection averages the last smoothWindow days' projection timestamps.
func meanProjection(days []DailyPoint) time.Time {
	start := len(days) - smoothWindow
	if start < 0 {
		start = 0
	}
	window := days[start:]

	var sum int64
	for _, d := range window {
		sum += d.ProjectedCompletion.Unix()
	}
	return time.Unix(sum/int64(len(window)), 0).UTC()
}
