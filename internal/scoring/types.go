// Package scoring computes the composite sprint health score from daily
// team-activity signal counts. The scorer is pure: no clock, no I/O, no
// randomness, so identical inputs always produce identical outputs.
package scoring

// ModelVersion identifies the scoring formula set. Bump whenever any of the
// penalty constants or thresholds below change.
const ModelVersion = "3.2.1"

// Status is the traffic-light rollup of the health score.
type Status string

const (
	StatusGreen  Status = "GREEN"  // healthScore >= 80
	StatusYellow Status = "YELLOW" // 60 <= healthScore < 80
	StatusRed    Status = "RED"    // healthScore < 60
)

// Confidence is the qualitative trust level in a computed value.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Risk driver types. The scorer emits the first seven; DriverDeliveryRisk is
// appended by the aggregator when the velocity projection overruns the sprint.
const (
	DriverBlockerCluster      = "BLOCKER_CLUSTER"
	DriverMissingStandup      = "MISSING_STANDUP"
	DriverStaleWork           = "STALE_WORK"
	DriverLowQualityInput     = "LOW_QUALITY_INPUT"
	DriverUnresolvedActions   = "UNRESOLVED_ACTIONS"
	DriverEndOfSprintPressure = "END_OF_SPRINT_PRESSURE"
	DriverOverlapAdjustment   = "OVERLAP_ADJUSTMENT"
	DriverDeliveryRisk        = "DELIVERY_RISK"
)

// SprintHealthInput is the fixed set of signal counts for one project-day.
// It is a plain value recomputed fresh on every call, never mutated.
type SprintHealthInput struct {
	PersistentBlockersOver2Days int      `json:"persistent_blockers_over_2_days"`
	MissingStandupMembers       int      `json:"missing_standup_members"`
	StaleWorkCount              int      `json:"stale_work_count"`
	UnresolvedActions           int      `json:"unresolved_actions"`
	QualityScore                *float64 `json:"quality_score,omitempty"` // 0-100, nil when unknown
	TeamSize                    int      `json:"team_size"`
	ActiveTaskCount             int      `json:"active_task_count"`
	DaysRemainingInSprint       *int     `json:"days_remaining_in_sprint,omitempty"`
}

// RiskDriver is one named, evidenced contribution to the health score.
// Impact is negative for penalties and positive for credits.
type RiskDriver struct {
	Type     string   `json:"type"`
	Impact   int      `json:"impact"`
	Evidence []string `json:"evidence"`
}

// BreakdownEntry is one line of the score derivation, in evaluation order.
// The first entry is always the synthetic base score.
type BreakdownEntry struct {
	Label  string `json:"label"`
	Impact int    `json:"impact"`
}

// ConfidenceBasis holds the components behind the confidence level.
type ConfidenceBasis struct {
	DataCompleteness float64 `json:"data_completeness"` // 0-1
	SignalStability  float64 `json:"signal_stability"`  // 0-1
	SampleSize       int     `json:"sample_size"`       // team size
}

// Probabilities are the derived sprint outcome odds. They always sum to 100.
type Probabilities struct {
	SprintSuccess int `json:"sprint_success"`
	Spillover     int `json:"spillover"`
}

// ProbabilityModel documents how the probabilities were derived.
type ProbabilityModel struct {
	Name    string `json:"name"`
	Formula string `json:"formula"`
}

// NormalizedMetrics are the per-capita signal rates, each clamped to [0, 1.5].
type NormalizedMetrics struct {
	BlockerRatePerMember           float64 `json:"blocker_rate_per_member"`
	MissingStandupRate             float64 `json:"missing_standup_rate"`
	StaleWorkRatePerActiveTask     float64 `json:"stale_work_rate_per_active_task"`
	UnresolvedActionsRatePerMember float64 `json:"unresolved_actions_rate_per_member"`
}

// SprintHealthComputation is the full scorer output for one project-day.
type SprintHealthComputation struct {
	HealthScore         int               `json:"health_score"` // 0-100
	Status              Status            `json:"status"`
	ConfidenceLevel     Confidence        `json:"confidence_level"`
	ConfidenceBasis     ConfidenceBasis   `json:"confidence_basis"`
	RiskDrivers         []RiskDriver      `json:"risk_drivers"`
	ScoreBreakdown      []BreakdownEntry  `json:"score_breakdown"`
	Probabilities       Probabilities     `json:"probabilities"`
	ProbabilityModel    ProbabilityModel  `json:"probability_model"`
	NormalizedMetrics   NormalizedMetrics `json:"normalized_metrics"`
	ScoringModelVersion string            `json:"scoring_model_version"`
}
