package store

import (
	"context"
	"errors"

	"github.com/me/roadmap/pkg/model"
)

// ErrNotFound reports a delete or update against a row that does not exist.
// Callers classify with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for plans, scheduling runs, and
// optimizer worker state.
type Store interface {
	// Plan CRUD
	CreatePlan(ctx context.Context, plan *model.Plan) error
	GetPlan(ctx context.Context, id string) (*model.Plan, error)
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	DeletePlan(ctx context.Context, id string) error

	// Run operations
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRunsByPlan(ctx context.Context, planID string) ([]*model.Run, error)

	// Worker state persistence for exhaustive optimization
	SaveWorkerState(ctx context.Context, ws *model.WorkerState) error
	LoadWorkerStates(ctx context.Context, planID string) ([]*model.WorkerState, error)
	DeleteWorkerStates(ctx context.Context, planID string) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
