package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		tasks      TEXT NOT NULL,
		engineers  TEXT NOT NULL,
		milestones TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		plan_id    TEXT NOT NULL,
		kind       TEXT NOT NULL DEFAULT 'greedy',
		score      TEXT NOT NULL DEFAULT '{}',
		schedule   TEXT NOT NULL DEFAULT '{}',
		improved   INTEGER NOT NULL DEFAULT 0,
		iterations INTEGER NOT NULL DEFAULT 0,
		workers    INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS worker_states (
		plan_id     TEXT NOT NULL,
		worker_id   INTEGER NOT NULL,
		vector      TEXT NOT NULL DEFAULT '[]',
		temperature REAL NOT NULL DEFAULT 0,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (plan_id, worker_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_plan_id ON runs(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
