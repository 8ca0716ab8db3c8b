package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cadencehq/sprintpulse/internal/aggregate"
	"github.com/cadencehq/sprintpulse/internal/scoring"
)

const dayFormat = "2006-01-02"

// probabilityRecord is the JSON payload of the probabilities column: the
// derived odds plus the metadata documenting how they were produced.
type probabilityRecord struct {
	Probabilities     scoring.Probabilities     `json:"probabilities"`
	ProbabilityModel  scoring.ProbabilityModel  `json:"probability_model"`
	ConfidenceBasis   scoring.ConfidenceBasis   `json:"confidence_basis"`
	NormalizedMetrics scoring.NormalizedMetrics `json:"normalized_metrics"`
}

// UpsertHealthDaily writes the health row for a project-day, overwriting any
// previous computation of the same day. Implements aggregate.Recorder.
func (db *DB) UpsertHealthDaily(d aggregate.DailyComputation) error {
	breakdown, err := json.Marshal(d.Computation.ScoreBreakdown)
	if err != nil {
		return fmt.Errorf("encoding breakdown: %w", err)
	}
	drivers, err := json.Marshal(d.Computation.RiskDrivers)
	if err != nil {
		return fmt.Errorf("encoding risk drivers: %w", err)
	}
	probs, err := json.Marshal(probabilityRecord{
		Probabilities:     d.Computation.Probabilities,
		ProbabilityModel:  d.Computation.ProbabilityModel,
		ConfidenceBasis:   d.Computation.ConfidenceBasis,
		NormalizedMetrics: d.Computation.NormalizedMetrics,
	})
	if err != nil {
		return fmt.Errorf("encoding probabilities: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO health_daily
		(project_id, day, health_score, status, confidence_level, score_breakdown,
		 risk_drivers, stale_work, missing_standups, persistent_blockers,
		 unresolved_actions, quality_score, probabilities, scoring_model_version, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, day) DO UPDATE SET
		 health_score=excluded.health_score,
		 status=excluded.status,
		 confidence_level=excluded.confidence_level,
		 score_breakdown=excluded.score_breakdown,
		 risk_drivers=excluded.risk_drivers,
		 stale_work=excluded.stale_work,
		 missing_standups=excluded.missing_standups,
		 persistent_blockers=excluded.persistent_blockers,
		 unresolved_actions=excluded.unresolved_actions,
		 quality_score=excluded.quality_score,
		 probabilities=excluded.probabilities,
		 scoring_model_version=excluded.scoring_model_version,
		 computed_at=excluded.computed_at`,
		d.ProjectID, d.Day.Format(dayFormat), d.Computation.HealthScore,
		string(d.Computation.Status), string(d.Computation.ConfidenceLevel),
		string(breakdown), string(drivers),
		d.Input.StaleWorkCount, d.Input.MissingStandupMembers,
		d.Input.PersistentBlockersOver2Days, d.Input.UnresolvedActions,
		d.Input.QualityScore, string(probs), d.Computation.ScoringModelVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// UpsertVelocitySnapshot writes the velocity row for a project-day,
// overwriting any previous snapshot. Implements aggregate.Recorder.
func (db *DB) UpsertVelocitySnapshot(d aggregate.DailyComputation) error {
	churn, err := json.Marshal(d.Velocity.ScopeChurn)
	if err != nil {
		return fmt.Errorf("encoding scope churn: %w", err)
	}
	signals, err := json.Marshal(d.Velocity.CapacitySignals)
	if err != nil {
		return fmt.Errorf("encoding capacity signals: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO velocity_snapshots
		(project_id, day, avg_per_day, stability_score, sampled_days,
		 weighted_remaining, projected_completion, delivery_risk, scope_churn,
		 capacity_signals, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, day) DO UPDATE SET
		 avg_per_day=excluded.avg_per_day,
		 stability_score=excluded.stability_score,
		 sampled_days=excluded.sampled_days,
		 weighted_remaining=excluded.weighted_remaining,
		 projected_completion=excluded.projected_completion,
		 delivery_risk=excluded.delivery_risk,
		 scope_churn=excluded.scope_churn,
		 capacity_signals=excluded.capacity_signals,
		 computed_at=excluded.computed_at`,
		d.ProjectID, d.Day.Format(dayFormat), d.Velocity.AvgTasksCompletedPerDay,
		d.Velocity.StabilityScore, d.Velocity.SampledDays,
		d.Velocity.WeightedRemainingWork,
		d.Velocity.ProjectedCompletion.UTC().Format(time.RFC3339),
		d.Velocity.DeliveryRisk, string(churn), string(signals),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetHealthDaily returns the persisted health row for a project-day, or nil
// if the day has never been computed.
func (db *DB) GetHealthDaily(projectID string, day time.Time) (*HealthDailyRow, error) {
	row := db.conn.QueryRow(
		`SELECT id, project_id, day, health_score, status, confidence_level,
		 score_breakdown, risk_drivers, stale_work, missing_standups,
		 persistent_blockers, unresolved_actions, quality_score, probabilities,
		 scoring_model_version, computed_at
		 FROM health_daily WHERE project_id = ? AND day = ?`,
		projectID, day.Format(dayFormat),
	)
	return scanHealthRow(row)
}

// GetHealthRange returns persisted health rows for [from, to], oldest first.
func (db *DB) GetHealthRange(projectID string, from, to time.Time) ([]HealthDailyRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, project_id, day, health_score, status, confidence_level,
		 score_breakdown, risk_drivers, stale_work, missing_standups,
		 persistent_blockers, unresolved_actions, quality_score, probabilities,
		 scoring_model_version, computed_at
		 FROM health_daily WHERE project_id = ? AND day >= ? AND day <= ?
		 ORDER BY day ASC`,
		projectID, from.Format(dayFormat), to.Format(dayFormat),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []HealthDailyRow
	for rows.Next() {
		var h HealthDailyRow
		var quality sql.NullFloat64
		if err := rows.Scan(
			&h.ID, &h.ProjectID, &h.Day, &h.HealthScore, &h.Status,
			&h.ConfidenceLevel, &h.ScoreBreakdown, &h.RiskDrivers, &h.StaleWork,
			&h.MissingStandups, &h.PersistentBlockers, &h.UnresolvedActions,
			&quality, &h.Probabilities, &h.ScoringModelVersion, &h.ComputedAt,
		); err != nil {
			return nil, err
		}
		if quality.Valid {
			h.QualityScore = &quality.Float64
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetVelocitySnapshot returns the persisted snapshot for a project-day, or
// nil if the day has never been computed.
func (db *DB) GetVelocitySnapshot(projectID string, day time.Time) (*VelocitySnapshotRow, error) {
	row := db.conn.QueryRow(
		`SELECT id, project_id, day, avg_per_day, stability_score, sampled_days,
		 weighted_remaining, projected_completion, delivery_risk, scope_churn,
		 capacity_signals, computed_at
		 FROM velocity_snapshots WHERE project_id = ? AND day = ?`,
		projectID, day.Format(dayFormat),
	)

	var v VelocitySnapshotRow
	err := row.Scan(
		&v.ID, &v.ProjectID, &v.Day, &v.AvgPerDay, &v.StabilityScore,
		&v.SampledDays, &v.WeightedRemaining, &v.ProjectedCompletion,
		&v.DeliveryRisk, &v.ScopeChurn, &v.CapacitySignals, &v.ComputedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanHealthRow(row *sql.Row) (*HealthDailyRow, error) {
	var h HealthDailyRow
	var quality sql.NullFloat64
	err := row.Scan(
		&h.ID, &h.ProjectID, &h.Day, &h.HealthScore, &h.Status,
		&h.ConfidenceLevel, &h.ScoreBreakdown, &h.RiskDrivers, &h.StaleWork,
		&h.MissingStandups, &h.PersistentBlockers, &h.UnresolvedActions,
		&quality, &h.Probabilities, &h.ScoringModelVersion, &h.ComputedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if quality.Valid {
		h.QualityScore = &quality.Float64
	}
	return &h, nil
}
