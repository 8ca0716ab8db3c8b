package aggregate

import (
	"sort"
	"time"

	"github.com/cadencehq/sprintpulse/internal/activity"
)

// staleWindow is how long an open issue may go without an update or a
// standup mention before it counts as stale.
const staleWindow = 72 * time.Hour

// DetectStaleWork returns open issues whose last update predates the stale
// window ending at dayEnd and which no standup entry inside that window
// mentions via linked issue ids.
func DetectStaleWork(issues []activity.Issue, windowEntries []activity.StandupEntry, dayEnd time.Time) []StaleIssue {
	cutoff := dayEnd.Add(-staleWindow)

	mentioned := make(map[string]bool)
	for _, e := range windowEntries {
		if e.Date.Before(cutoff) || !e.Date.Before(dayEnd) {
			continue
		}
		for _, id := range e.LinkedIssueIDs {
			mentioned[id] = true
		}
	}

	var stale []StaleIssue
	for _, issue := range issues {
		if !issue.Open() {
			continue
		}
		if !issue.UpdatedAt.Before(cutoff) {
			continue
		}
		if mentioned[issue.ID] {
			continue
		}
		stale = append(stale, StaleIssue{
			IssueID:    issue.ID,
			Priority:   issue.Priority,
			AssigneeID: issue.AssigneeID,
			UpdatedAt:  issue.UpdatedAt,
		})
	}

	// Oldest first, so the most neglected work leads the evidence lists.
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
	})
	return stale
}
