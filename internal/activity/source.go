package activity

import (
	"context"
	"time"
)

// Source exposes the windowed activity queries the aggregation pipeline
// needs. The production implementation lives in the surrounding application;
// this repo ships a file-backed source for CLI use and an in-memory one for
// tests.
type Source interface {
	// Members returns the project member list.
	Members(ctx context.Context, projectID string) ([]Member, error)

	// Standups returns entries whose date falls in [from, to).
	Standups(ctx context.Context, projectID string, from, to time.Time) ([]StandupEntry, error)

	// Issues returns all issue snapshots for the project.
	Issues(ctx context.Context, projectID string) ([]Issue, error)

	// Transitions returns field changes of the given field in [from, to).
	Transitions(ctx context.Context, projectID, field string, from, to time.Time) ([]Transition, error)

	// Actions returns all tracked action items.
	Actions(ctx context.Context, projectID string) ([]ActionItem, error)

	// ActiveSprint returns the current sprint, or nil if none is active.
	ActiveSprint(ctx context.Context, projectID string) (*Sprint, error)

	// GuidanceEnabled reports the proactive-guidance feature flag.
	GuidanceEnabled(ctx context.Context, projectID string) (bool, error)
}

// BundleSource serves queries from an in-memory Bundle. It backs both the
// file-based CLI flow and test fixtures.
type BundleSource struct {
	bundle Bundle
}

// NewBundleSource wraps a Bundle as a Source.
func NewBundleSource(b Bundle) *BundleSource {
	return &BundleSource{bundle: b}
}

// ProjectID returns the project the bundle was exported for.
func (s *BundleSource) ProjectID() string {
	return s.bundle.ProjectID
}

// Members implements Source.
func (s *BundleSource) Members(_ context.Context, _ string) ([]Member, error) {
	return s.bundle.Members, nil
}

// Standups implements Source. Entries are filtered to [from, to).
func (s *BundleSource) Standups(_ context.Context, _ string, from, to time.Time) ([]StandupEntry, error) {
	var out []StandupEntry
	for _, e := range s.bundle.Standups {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Issues implements Source.
func (s *BundleSource) Issues(_ context.Context, _ string) ([]Issue, error) {
	return s.bundle.Issues, nil
}

// Transitions implements Source, filtered by field and [from, to).
func (s *BundleSource) Transitions(_ context.Context, _ string, field string, from, to time.Time) ([]Transition, error) {
	var out []Transition
	for _, t := range s.bundle.Transitions {
		if t.Field != field {
			continue
		}
		if !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Actions implements Source.
func (s *BundleSource) Actions(_ context.Context, _ string) ([]ActionItem, error) {
	return s.bundle.Actions, nil
}

// ActiveSprint implements Source.
func (s *BundleSource) ActiveSprint(_ context.Context, _ string) (*Sprint, error) {
	return s.bundle.Sprint, nil
}

// GuidanceEnabled implements Source.
func (s *BundleSource) GuidanceEnabled(_ context.Context, _ string) (bool, error) {
	return s.bundle.GuidanceEnabled, nil
}
