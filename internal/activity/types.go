// Package activity provides the raw team-activity shapes consumed by the
// aggregation pipeline: standup entries, issue snapshots, field transitions,
// project members, and action items. These mirror what the surrounding
// application's persistence layer hands over at the library boundary.
package activity

import "time"

// Issue statuses as they appear in field history and snapshots.
const (
	StatusDone = "DONE"
)

// Issue types carrying distinct remaining-work weights.
const (
	TypeBug   = "BUG"
	TypeStory = "STORY"
)

// Fields tracked in issue history.
const (
	FieldStatus = "STATUS"
	FieldSprint = "SPRINT"
)

// Action item states.
const (
	ActionOpen    = "OPEN"
	ActionSnoozed = "SNOOZED"
	ActionDone    = "DONE"
)

// StandupEntry is a single member's standup submission for one day.
type StandupEntry struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	Date                   time.Time `json:"date"`
	Blockers               string    `json:"blockers,omitempty"`
	Dependencies           string    `json:"dependencies,omitempty"`
	SummaryToday           string    `json:"summary_today"`
	ProgressSinceYesterday string    `json:"progress_since_yesterday"`
	LinkedIssueIDs         []string  `json:"linked_issue_ids,omitempty"`
	LinkedResearchIDs      []string  `json:"linked_research_ids,omitempty"`
}

// HasLinkedWork reports whether the entry references any issue or research item.
func (e StandupEntry) HasLinkedWork() bool {
	return len(e.LinkedIssueIDs) > 0 || len(e.LinkedResearchIDs) > 0
}

// Issue is a point-in-time snapshot of a tracked work item.
type Issue struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"` // LOW, MEDIUM, HIGH
	Type       string    `json:"type"`     // BUG, STORY, TASK, ...
	AssigneeID string    `json:"assignee_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Open reports whether the issue is still in flight.
func (i Issue) Open() bool {
	return i.Status != StatusDone
}

// Transition is one recorded field change on an issue.
type Transition struct {
	IssueID   string    `json:"issue_id"`
	Field     string    `json:"field"` // STATUS or SPRINT
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a project member eligible for standups.
type Member struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// ActionItem is a tracked follow-up captured outside the suggestion engine.
type ActionItem struct {
	ID        string    `json:"id"`
	State     string    `json:"state"` // OPEN, SNOOZED, DONE
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sprint describes the active sprint window, when one exists.
type Sprint struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	EndDate *time.Time `json:"end_date,omitempty"`
}

// Bundle is a full activity export for one project, the shape produced by the
// surrounding application's export endpoint and consumed by the file source.
type Bundle struct {
	ProjectID   string         `json:"project_id"`
	Members     []Member       `json:"members"`
	Standups    []StandupEntry `json:"standups"`
	Issues      []Issue        `json:"issues"`
	Transitions []Transition   `json:"transitions"`
	Actions     []ActionItem   `json:"actions"`
	Sprint      *Sprint        `json:"sprint,omitempty"`

	// GuidanceEnabled mirrors the application's proactive-guidance feature flag.
	GuidanceEnabled bool `json:"guidance_enabled"`
}
