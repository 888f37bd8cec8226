package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/roadmap/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Plan CRUD ---

func (s *SQLiteStore) CreatePlan(ctx context.Context, plan *model.Plan) error {
	s.logger.Debug("sql", "op", "insert", "table", "plans", "id", plan.ID)

	tasksJSON, err := json.Marshal(plan.Tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	engineersJSON, err := json.Marshal(plan.Engineers)
	if err != nil {
		return fmt.Errorf("marshal engineers: %w", err)
	}
	milestonesJSON, err := json.Marshal(plan.Milestones)
	if err != nil {
		return fmt.Errorf("marshal milestones: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, name, tasks, engineers, milestones, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Name,
		string(tasksJSON), string(engineersJSON), string(milestonesJSON),
		plan.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	s.logger.Debug("sql", "op", "select", "table", "plans", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, tasks, engineers, milestones, created_at
		 FROM plans WHERE id = ?`, id)

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return plan, err
}

func (s *SQLiteStore) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	s.logger.Debug("sql", "op", "list", "table", "plans")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, tasks, engineers, milestones, created_at
		 FROM plans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "plans", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	// Runs and worker state for the plan go with it.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE plan_id = ?`, id); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM worker_states WHERE plan_id = ?`, id)
	return err
}

// --- Run operations ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID, "kind", run.Kind)

	scoreJSON, err := json.Marshal(run.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	scheduleJSON, err := json.Marshal(run.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, plan_id, kind, score, schedule, improved, iterations, workers, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PlanID, string(run.Kind),
		string(scoreJSON), string(scheduleJSON),
		boolToInt(run.Improved), run.Iterations, run.Workers,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, plan_id, kind, score, schedule, improved, iterations, workers, created_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListRunsByPlan(ctx context.Context, planID string) ([]*model.Run, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "plan_id", planID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_id, kind, score, schedule, improved, iterations, workers, created_at
		 FROM runs WHERE plan_id = ? ORDER BY created_at DESC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// --- Worker state persistence ---

// SaveWorkerState upserts one worker's resumable annealing state.
func (s *SQLiteStore) SaveWorkerState(ctx context.Context, ws *model.WorkerState) error {
	s.logger.Debug("sql", "op", "upsert", "table", "worker_states",
		"plan_id", ws.PlanID, "worker_id", ws.WorkerID)

	vectorJSON, err := json.Marshal(ws.Vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO worker_states (plan_id, worker_id, vector, temperature, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(plan_id, worker_id) DO UPDATE SET
		   vector = excluded.vector,
		   temperature = excluded.temperature,
		   updated_at = excluded.updated_at`,
		ws.PlanID, ws.WorkerID, string(vectorJSON), ws.Temperature,
		ws.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) LoadWorkerStates(ctx context.Context, planID string) ([]*model.WorkerState, error) {
	s.logger.Debug("sql", "op", "list", "table", "worker_states", "plan_id", planID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_id, worker_id, vector, temperature, updated_at
		 FROM worker_states WHERE plan_id = ? ORDER BY worker_id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []*model.WorkerState
	for rows.Next() {
		var ws model.WorkerState
		var vectorJSON, updatedAt string

		if err := rows.Scan(&ws.PlanID, &ws.WorkerID, &vectorJSON, &ws.Temperature, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vectorJSON), &ws.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector: %w", err)
		}
		ws.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		states = append(states, &ws)
	}
	return states, rows.Err()
}

// DeleteWorkerStates discards the persisted optimizer state for a plan so the
// next exhaustive run starts fresh.
func (s *SQLiteStore) DeleteWorkerStates(ctx context.Context, planID string) error {
	s.logger.Debug("sql", "op", "delete", "table", "worker_states", "plan_id", planID)

	_, err := s.db.ExecContext(ctx, `DELETE FROM worker_states WHERE plan_id = ?`, planID)
	return err
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*model.Plan, error) {
	var plan model.Plan
	var tasksJSON, engineersJSON, milestonesJSON, createdAt string

	err := row.Scan(&plan.ID, &plan.Name, &tasksJSON, &engineersJSON, &milestonesJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tasksJSON), &plan.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	if err := json.Unmarshal([]byte(engineersJSON), &plan.Engineers); err != nil {
		return nil, fmt.Errorf("unmarshal engineers: %w", err)
	}
	if err := json.Unmarshal([]byte(milestonesJSON), &plan.Milestones); err != nil {
		return nil, fmt.Errorf("unmarshal milestones: %w", err)
	}
	plan.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &plan, nil
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	var kind, scoreJSON, scheduleJSON, createdAt string
	var improved int

	err := row.Scan(&run.ID, &run.PlanID, &kind, &scoreJSON, &scheduleJSON,
		&improved, &run.Iterations, &run.Workers, &createdAt)
	if err != nil {
		return nil, err
	}

	run.Kind = model.RunKind(kind)
	run.Improved = improved != 0
	if err := json.Unmarshal([]byte(scoreJSON), &run.Score); err != nil {
		return nil, fmt.Errorf("unmarshal score: %w", err)
	}
	if scheduleJSON != "" && scheduleJSON != "null" {
		run.Schedule = &model.Schedule{}
		if err := json.Unmarshal([]byte(scheduleJSON), run.Schedule); err != nil {
			return nil, fmt.Errorf("unmarshal schedule: %w", err)
		}
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
