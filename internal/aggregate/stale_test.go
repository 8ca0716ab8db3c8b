package aggregate

import (
	"testing"
	"time"

	"github.com/cadencehq/sprintpulse/internal/activity"
)

func TestDetectStaleWork_OldOpenIssueIsStale(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "i1", Status: "IN_PROGRESS", Priority: "HIGH", UpdatedAt: dayEnd.Add(-96 * time.Hour)},
	}

	stale := DetectStaleWork(issues, nil, dayEnd)
	if len(stale) != 1 {
		t.Fatalf("expected 1 stale issue, got %d", len(stale))
	}
	if stale[0].IssueID != "i1" || stale[0].Priority != "HIGH" {
		t.Errorf("unexpected stale issue %+v", stale[0])
	}
}

func TestDetectStaleWork_RecentUpdateIsNotStale(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "i1", Status: "IN_PROGRESS", UpdatedAt: dayEnd.Add(-48 * time.Hour)},
	}
	if stale := DetectStaleWork(issues, nil, dayEnd); len(stale) != 0 {
		t.Fatalf("expected no stale issues, got %d", len(stale))
	}
}

func TestDetectStaleWork_DoneIssueExcluded(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "i1", Status: activity.StatusDone, UpdatedAt: dayEnd.Add(-200 * time.Hour)},
	}
	if stale := DetectStaleWork(issues, nil, dayEnd); len(stale) != 0 {
		t.Fatalf("expected done issue excluded, got %d", len(stale))
	}
}

func TestDetectStaleWork_StandupMentionSuppresses(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "i1", Status: "IN_PROGRESS", UpdatedAt: dayEnd.Add(-96 * time.Hour)},
	}
	entries := []activity.StandupEntry{
		{ID: "e1", UserID: "u1", Date: dayEnd.Add(-24 * time.Hour), LinkedIssueIDs: []string{"i1"}},
	}
	if stale := DetectStaleWork(issues, entries, dayEnd); len(stale) != 0 {
		t.Fatalf("expected mention to suppress staleness, got %d", len(stale))
	}
}

func TestDetectStaleWork_MentionOutsideWindowIgnored(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "i1", Status: "IN_PROGRESS", UpdatedAt: dayEnd.Add(-96 * time.Hour)},
	}
	// Mention predates the 72h window; it should not save the issue.
	entries := []activity.StandupEntry{
		{ID: "e1", UserID: "u1", Date: dayEnd.Add(-80 * time.Hour), LinkedIssueIDs: []string{"i1"}},
	}
	if stale := DetectStaleWork(issues, entries, dayEnd); len(stale) != 1 {
		t.Fatalf("expected stale issue despite old mention, got %d", len(stale))
	}
}

func TestDetectStaleWork_OldestFirst(t *testing.T) {
	dayEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	issues := []activity.Issue{
		{ID: "newer", Status: "IN_PROGRESS", UpdatedAt: dayEnd.Add(-100 * time.Hour)},
		{ID: "older", Status: "IN_PROGRESS", UpdatedAt: dayEnd.Add(-300 * time.Hour)},
	}

	stale := DetectStaleWork(issues, nil, dayEnd)
	if len(stale) != 2 {
		t.Fatalf("expected 2 stale issues, got %d", len(stale))
	}
	if stale[0].IssueID != "older" {
		t.Errorf("expected oldest first, got %q", stale[0].IssueID)
	}
}
