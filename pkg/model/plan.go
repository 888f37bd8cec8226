package model

import "time"

// Plan is a complete scheduling input: the task graph, the roster, and the
// milestone list. Plans are immutable once submitted; every scheduling run
// works from its own snapshot.
type Plan struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Tasks      []Task      `json:"tasks"`
	Engineers  []Engineer  `json:"engineers"`
	Milestones []Milestone `json:"milestones"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Task returns the task with the given id, or nil.
func (p *Plan) Task(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the plan. Pool workers receive their own
// snapshot so no mutable state is shared across concurrent units.
func (p *Plan) Clone() *Plan {
	out := &Plan{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
	out.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.DependsOn = append([]string(nil), t.DependsOn...)
		out.Tasks[i] = t
	}
	out.Engineers = make([]Engineer, len(p.Engineers))
	for i, e := range p.Engineers {
		e.Unavailable = append([]DateRange(nil), e.Unavailable...)
		out.Engineers[i] = e
	}
	out.Milestones = append([]Milestone(nil), p.Milestones...)
	return out
}

// Engineer returns the roster entry with the given id, or nil.
func (p *Plan) Engineer(id string) *Engineer {
	for i := range p.Engineers {
		if p.Engineers[i].ID == id {
			return &p.Engineers[i]
		}
	}
	return nil
}

// RunKind distinguishes scheduling runs in the store and the API.
type RunKind string

const (
	RunKindGreedy   RunKind = "greedy"
	RunKindOptimize RunKind = "optimize"
)

// Run is one persisted scheduling result for a plan.
type Run struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	Kind      RunKind   `json:"kind"`
	Score     Score     `json:"score"`
	Schedule  *Schedule `json:"schedule,omitempty"`

	// Improved is false when optimization could not beat the greedy
	// baseline; the baseline itself is then the reported schedule.
	Improved bool `json:"improved"`

	// Iterations is the total annealing iterations spent across workers.
	Iterations int64 `json:"iterations,omitempty"`

	// Workers is the pool width used for optimize runs.
	Workers int `json:"workers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// WorkerState is the resumable annealing state of one pool worker,
// persisted between exhaustive-mode rounds.
type WorkerState struct {
	PlanID      string    `json:"plan_id"`
	WorkerID    int       `json:"worker_id"`
	Vector      []int     `json:"vector"`
	Temperature float64   `json:"temperature"`
	UpdatedAt   time.Time `json:"updated_at"`
}
