// Package store provides SQLite persistence for computed sprint health
// rows, velocity snapshots, and suggestion lifecycle state.
package store

import "time"

// HealthDailyRow is the persisted result of one project-day health
// computation. Breakdown, drivers, and probability metadata are stored as
// JSON columns.
type HealthDailyRow struct {
	ID                  int64    `json:"id"`
	ProjectID           string   `json:"project_id"`
	Day                 string   `json:"day"` // YYYY-MM-DD
	HealthScore         int      `json:"health_score"`
	Status              string   `json:"status"`
	ConfidenceLevel     string   `json:"confidence_level"`
	ScoreBreakdown      string   `json:"score_breakdown"`
	RiskDrivers         string   `json:"risk_drivers"`
	StaleWork           int      `json:"stale_work"`
	MissingStandups     int      `json:"missing_standups"`
	PersistentBlockers  int      `json:"persistent_blockers"`
	UnresolvedActions   int      `json:"unresolved_actions"`
	QualityScore        *float64 `json:"quality_score,omitempty"`
	Probabilities       string   `json:"probabilities"`
	ScoringModelVersion string   `json:"scoring_model_version"`
	ComputedAt          string   `json:"computed_at"`
}

// VelocitySnapshotRow is the persisted trailing-velocity record for one
// project-day, including the day's capacity signals as JSON.
type VelocitySnapshotRow struct {
	ID                  int64   `json:"id"`
	ProjectID           string  `json:"project_id"`
	Day                 string  `json:"day"`
	AvgPerDay           float64 `json:"avg_per_day"`
	StabilityScore      float64 `json:"stability_score"`
	SampledDays         int     `json:"sampled_days"`
	WeightedRemaining   float64 `json:"weighted_remaining"`
	ProjectedCompletion string  `json:"projected_completion"`
	DeliveryRisk        bool    `json:"delivery_risk"`
	ScopeChurn          string  `json:"scope_churn"`
	CapacitySignals     string  `json:"capacity_signals"`
	ComputedAt          string  `json:"computed_at"`
}

// SuggestionStateRow is one persisted lifecycle record, scoped per
// project, user, day, and content-addressed suggestion id.
type SuggestionStateRow struct {
	ID             int64      `json:"id"`
	ProjectID      string     `json:"project_id"`
	UserID         string     `json:"user_id"`
	Day            string     `json:"day"`
	SuggestionID   string     `json:"suggestion_id"`
	State          string     `json:"state"`
	DismissedUntil *time.Time `json:"dismissed_until,omitempty"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty"`
	UpdatedAt      string     `json:"updated_at"`
}
