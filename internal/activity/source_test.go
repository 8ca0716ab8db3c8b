package activity

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBundleSource_StandupWindowIsHalfOpen(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	source := NewBundleSource(Bundle{
		ProjectID: "p1",
		Standups: []StandupEntry{
			{ID: "before", Date: from.Add(-time.Second)},
			{ID: "start", Date: from},
			{ID: "inside", Date: from.Add(12 * time.Hour)},
			{ID: "end", Date: to},
		},
	})

	entries, err := source.Standups(context.Background(), "p1", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "start" || entries[1].ID != "inside" {
		t.Errorf("expected [start inside], got [%s %s]", entries[0].ID, entries[1].ID)
	}
}

func TestBundleSource_TransitionsFilterByField(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)

	source := NewBundleSource(Bundle{
		ProjectID: "p1",
		Transitions: []Transition{
			{IssueID: "i1", Field: FieldStatus, NewValue: StatusDone, CreatedAt: from.AddDate(0, 0, 1)},
			{IssueID: "i2", Field: FieldSprint, NewValue: "s2", CreatedAt: from.AddDate(0, 0, 1)},
			{IssueID: "i3", Field: FieldStatus, NewValue: StatusDone, CreatedAt: to},
		},
	})

	transitions, err := source.Transitions(context.Background(), "p1", FieldStatus, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(transitions) != 1 || transitions[0].IssueID != "i1" {
		t.Fatalf("expected only i1, got %+v", transitions)
	}
}

func TestIssue_Open(t *testing.T) {
	if (Issue{Status: StatusDone}).Open() {
		t.Error("DONE issue should not be open")
	}
	if !(Issue{Status: "IN_PROGRESS"}).Open() {
		t.Error("IN_PROGRESS issue should be open")
	}
}

func TestStandupEntry_HasLinkedWork(t *testing.T) {
	if (StandupEntry{}).HasLinkedWork() {
		t.Error("empty entry should have no linked work")
	}
	if !(StandupEntry{LinkedIssueIDs: []string{"i1"}}).HasLinkedWork() {
		t.Error("issue link should count")
	}
	if !(StandupEntry{LinkedResearchIDs: []string{"r1"}}).HasLinkedWork() {
		t.Error("research link should count")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.json")
	payload := `{
		"project_id": "p1",
		"members": [{"user_id": "u1", "name": "Priya"}],
		"standups": [{"id": "e1", "user_id": "u1", "date": "2026-03-10T09:00:00Z", "summary_today": "exporter"}],
		"sprint": {"id": "s1", "name": "Sprint 12", "end_date": "2026-03-14T00:00:00Z"},
		"guidance_enabled": true
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if source.ProjectID() != "p1" {
		t.Errorf("expected project p1, got %q", source.ProjectID())
	}

	members, err := source.Members(context.Background(), "p1")
	if err != nil || len(members) != 1 || members[0].Name != "Priya" {
		t.Errorf("unexpected members %+v (err %v)", members, err)
	}

	sprint, err := source.ActiveSprint(context.Background(), "p1")
	if err != nil || sprint == nil || sprint.EndDate == nil {
		t.Fatalf("unexpected sprint %+v (err %v)", sprint, err)
	}

	enabled, err := source.GuidanceEnabled(context.Background(), "p1")
	if err != nil || !enabled {
		t.Errorf("expected guidance enabled, got %t (err %v)", enabled, err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_MissingProjectID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.json")
	if err := os.WriteFile(path, []byte(`{"members": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for export without project_id")
	}
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activity.json")
	if err := os.WriteFile(path, []byte(`{"project_id": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
