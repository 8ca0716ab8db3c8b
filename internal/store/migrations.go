package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes. Both derived tables are
// keyed uniquely by project+day so recomputation upserts instead of
// appending; suggestion state is additionally keyed by user and suggestion.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS health_daily (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id            TEXT NOT NULL,
			day                   TEXT NOT NULL,
			health_score          INTEGER NOT NULL,
			status                TEXT NOT NULL,
			confidence_level      TEXT NOT NULL,
			score_breakdown       TEXT NOT NULL,
			risk_drivers          TEXT NOT NULL,
			stale_work            INTEGER NOT NULL,
			missing_standups      INTEGER NOT NULL,
			persistent_blockers   INTEGER NOT NULL,
			unresolved_actions    INTEGER NOT NULL,
			quality_score         REAL,
			probabilities         TEXT NOT NULL,
			scoring_model_version TEXT NOT NULL,
			computed_at           TEXT NOT NULL,
			UNIQUE(project_id, day)
		)`,

		`CREATE TABLE IF NOT EXISTS velocity_snapshots (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id           TEXT NOT NULL,
			day                  TEXT NOT NULL,
			avg_per_day          REAL NOT NULL,
			stability_score      REAL NOT NULL,
			sampled_days         INTEGER NOT NULL,
			weighted_remaining   REAL NOT NULL,
			projected_completion TEXT NOT NULL,
			delivery_risk        BOOLEAN NOT NULL,
			scope_churn          TEXT NOT NULL,
			capacity_signals     TEXT NOT NULL,
			computed_at          TEXT NOT NULL,
			UNIQUE(project_id, day)
		)`,

		`CREATE TABLE IF NOT EXISTS suggestion_states (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id      TEXT NOT NULL,
			user_id         TEXT NOT NULL,
			day             TEXT NOT NULL,
			suggestion_id   TEXT NOT NULL,
			state           TEXT NOT NULL,
			dismissed_until TEXT,
			snoozed_until   TEXT,
			updated_at      TEXT NOT NULL,
			UNIQUE(project_id, user_id, day, suggestion_id)
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_health_daily_project ON health_daily(project_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_velocity_project ON velocity_snapshots(project_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestion_states_scope ON suggestion_states(project_id, user_id, day)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
