package store

import (
	"database/sql"
	"time"

	"github.com/cadencehq/sprintpulse/internal/guidance"
)

// SetSuggestionState upserts the lifecycle state for one suggestion id,
// scoped to a project, user, and day. Last write wins.
func (db *DB) SetSuggestionState(projectID, userID string, day time.Time, suggestionID, state string, dismissedUntil, snoozedUntil *time.Time) error {
	_, err := db.conn.Exec(
		`INSERT INTO suggestion_states
		(project_id, user_id, day, suggestion_id, state, dismissed_until, snoozed_until, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, user_id, day, suggestion_id) DO UPDATE SET
		 state=excluded.state,
		 dismissed_until=excluded.dismissed_until,
		 snoozed_until=excluded.snoozed_until,
		 updated_at=excluded.updated_at`,
		projectID, userID, day.Format(dayFormat), suggestionID, state,
		formatNullableTime(dismissedUntil), formatNullableTime(snoozedUntil),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetSuggestionStates returns all persisted lifecycle states for a project,
// user, and day, keyed by suggestion id and ready to hand to the guidance
// builder.
func (db *DB) GetSuggestionStates(projectID, userID string, day time.Time) (map[string]guidance.LifecycleState, error) {
	rows, err := db.conn.Query(
		`SELECT suggestion_id, state, dismissed_until, snoozed_until
		 FROM suggestion_states
		 WHERE project_id = ? AND user_id = ? AND day = ?`,
		projectID, userID, day.Format(dayFormat),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	states := make(map[string]guidance.LifecycleState)
	for rows.Next() {
		var id, state string
		var dismissed, snoozed sql.NullString
		if err := rows.Scan(&id, &state, &dismissed, &snoozed); err != nil {
			return nil, err
		}
		states[id] = guidance.LifecycleState{
			State:          state,
			DismissedUntil: parseNullableTime(dismissed),
			SnoozedUntil:   parseNullableTime(snoozed),
		}
	}
	return states, rows.Err()
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
