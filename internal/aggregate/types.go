// Package aggregate reduces raw team activity for one project-day into the
// signal counts the scorer consumes, plus the auxiliary metrics (velocity,
// capacity signals, delivery forecast) the guidance builder needs.
package aggregate

import (
	"time"

	"github.com/cadencehq/sprintpulse/internal/scoring"
)

// Capacity signal types.
const (
	SignalOverloaded   = "OVERLOADED"
	SignalMultiBlocked = "MULTI_BLOCKED"
	SignalIdle         = "IDLE"
)

// Thresholds are the fixed cutoffs for capacity-imbalance detection.
type Thresholds struct {
	OverloadedOpenItems int `json:"overloaded_open_items"` // openItems > N
	MultiBlockedItems   int `json:"multi_blocked_items"`   // blockedItems >= N
	IdleDays            int `json:"idle_days"`             // openItems == 0 && idleDays >= N
}

// DefaultThresholds returns the stock capacity cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{OverloadedOpenItems: 5, MultiBlockedItems: 2, IdleDays: 5}
}

// CapacitySignal is a per-member workload-imbalance flag. A member can carry
// more than one signal at a time. Signals are derived transiently on each
// computation and persisted only inside the velocity snapshot JSON.
type CapacitySignal struct {
	Type         string     `json:"type"`
	UserID       string     `json:"user_id"`
	MemberName   string     `json:"member_name"`
	OpenItems    int        `json:"open_items"`
	BlockedItems int        `json:"blocked_items"`
	IdleDays     int        `json:"idle_days"`
	Thresholds   Thresholds `json:"thresholds"`
	EntryIDs     []string   `json:"entry_ids,omitempty"`
	WorkItemIDs  []string   `json:"work_item_ids,omitempty"`
	Evidence     []string   `json:"evidence"` // entry ids and linked-work ids
	Message      string     `json:"message"`
}

// BlockerChain is one persistent blocker: the same normalized complaint from
// the same member across several calendar days.
type BlockerChain struct {
	UserID   string   `json:"user_id"`
	Snippet  string   `json:"snippet"`
	Days     int      `json:"days"` // distinct calendar days in the lookback
	EntryIDs []string `json:"entry_ids"`
}

// StaleIssue is an open issue with no recent update and no standup mention.
type StaleIssue struct {
	IssueID    string    `json:"issue_id"`
	Priority   string    `json:"priority"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScopeChurn summarizes sprint scope movement over the lookback window.
type ScopeChurn struct {
	ItemsAdded   int `json:"items_added"`
	ItemsRemoved int `json:"items_removed"`
	TotalWork    int `json:"total_work"`
}

// VelocitySnapshot captures the trailing completion rate and the projection
// built on it. Persisted as one row per project-day.
type VelocitySnapshot struct {
	AvgTasksCompletedPerDay float64          `json:"avg_tasks_completed_per_day"`
	StabilityScore          float64          `json:"stability_score"` // 1 - stddev/mean, bounded [0,1]
	SampledDays             int              `json:"sampled_days"`
	WeightedRemainingWork   float64          `json:"weighted_remaining_work"`
	ProjectedCompletion     time.Time        `json:"projected_completion"`
	DeliveryRisk            bool             `json:"delivery_risk"`
	ScopeChurn              ScopeChurn       `json:"scope_churn"`
	CapacitySignals         []CapacitySignal `json:"capacity_signals"`
}

// Forecast is the confidence assessment behind velocity projections.
type Forecast struct {
	Confidence         scoring.Confidence `json:"confidence"`
	BlendedScore       float64            `json:"blended_score"`
	DataQualityScore   float64            `json:"data_quality_score"`
	VelocityStability  float64            `json:"velocity_stability"`
	BlockerVolatility  float64            `json:"blocker_volatility"`
	LinkedWorkCoverage float64            `json:"linked_work_coverage"`
	ScopeChurnPenalty  float64            `json:"scope_churn_penalty"`
	SampledDays        int                `json:"sampled_days"`
}

// DailyComputation is the full aggregator output for one project-day.
type DailyComputation struct {
	ProjectID string    `json:"project_id"`
	Day       time.Time `json:"day"`

	Input       scoring.SprintHealthInput       `json:"input"`
	Computation scoring.SprintHealthComputation `json:"computation"`

	BlockerChains   []BlockerChain   `json:"blocker_chains"`
	StaleIssues     []StaleIssue     `json:"stale_issues"`
	CapacitySignals []CapacitySignal `json:"capacity_signals"`
	Velocity        VelocitySnapshot `json:"velocity"`
	Forecast        Forecast         `json:"forecast"`
	GuidanceEnabled bool             `json:"guidance_enabled"`
}
