// Package guidance turns aggregated sprint signals into deterministic,
// deduplicated coaching suggestions with a persisted accept/snooze/dismiss
// lifecycle, plus an executive summary view.
package guidance

import (
	"time"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

// Suggestion types.
const (
	TypeReallocation        = "REALLOCATION"
	TypeScopeAdjustment     = "SCOPE_ADJUSTMENT"
	TypeMeetingOptimization = "MEETING_OPTIMIZATION"
)

// Role gates for acting on a suggestion.
const (
	RoleLeadership = "LEADERSHIP"
	RolePOOrAdmin  = "PO_OR_ADMIN"
)

// Caller project roles recognized by the scope-adjustment gate.
const (
	CallerPO    = "PO"
	CallerAdmin = "ADMIN"
)

// Lifecycle states.
const (
	StateOpen      = "OPEN"
	StateAccepted  = "ACCEPTED"
	StateDismissed = "DISMISSED"
	StateSnoozed   = "SNOOZED"
)

// LabelLowConfidence marks suggestions produced while the delivery forecast
// itself was LOW confidence.
const LabelLowConfidence = "LOW_CONFIDENCE"

// Suggestion is one coaching recommendation. It is derived fresh on every
// computation cycle; only its lifecycle state persists, keyed by the
// content-addressed ID.
type Suggestion struct {
	ID                string     `json:"id"`
	Type              string     `json:"type"`
	Recommendation    string     `json:"recommendation"`
	Reason            string     `json:"reason"`
	Evidence          []string   `json:"evidence"` // ordered key:value tokens
	ImpactEstimate    string     `json:"impact_estimate"`
	ImpactScore       int        `json:"impact_score"` // 0-100
	ImpactExplanation string     `json:"impact_explanation"`
	FormulaBasis      string     `json:"formula_basis"`
	RequiresRole      string     `json:"requires_role"`
	ConfidenceLabel   string     `json:"confidence_label,omitempty"`
	State             string     `json:"state"`
	DismissedUntil    *time.Time `json:"dismissed_until,omitempty"`
	SnoozedUntil      *time.Time `json:"snoozed_until,omitempty"`
}

// LifecycleState is the persisted suppression record for one suggestion id,
// scoped per project, user, and day by the store.
type LifecycleState struct {
	State          string     `json:"state"`
	DismissedUntil *time.Time `json:"dismissed_until,omitempty"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty"`
}

// Context is everything the builder needs for one computation cycle. The
// lifecycle map is read-only here; writes happen in the surrounding
// application layer.
type Context struct {
	CapacitySignals    []aggregate.CapacitySignal
	RiskDrivers        []scoring.RiskDriver
	StaleIssues        []aggregate.StaleIssue
	PersistentBlockers int
	UnresolvedActions  int
	QualityScore       *float64
	DeliveryRisk       bool
	ForecastConfidence scoring.Confidence

	// CallerRole is the requesting user's project role (PO, ADMIN, ...).
	CallerRole string

	// OpenActionIDs are already-tracked action items; suggestions that
	// duplicate one are dropped.
	OpenActionIDs []string

	// Lifecycle maps suggestion id to persisted suppression state.
	Lifecycle map[string]LifecycleState

	// Now anchors the dismissal/snooze expiry checks.
	Now time.Time

	// Enabled mirrors the proactive-guidance feature flag. When false the
	// builder returns no suggestions but still fills the executive view.
	Enabled bool
}

// ExecutiveView is the condensed leadership summary.
type ExecutiveView struct {
	TopRisks                      []string `json:"top_risks"`
	TopActions                    []string `json:"top_actions"`
	TodaysFocus                   []string `json:"todays_focus"`
	SuggestedStructuralAdjustment string   `json:"suggested_structural_adjustment,omitempty"`
}

// Result is the builder output for one cycle.
type Result struct {
	Suggestions []Suggestion  `json:"suggestions"`
	Executive   ExecutiveView `json:"executive"`
}

// Rule examines the context and produces zero or more candidate suggestions.
type Rule func(ctx *Context) []Suggestion
