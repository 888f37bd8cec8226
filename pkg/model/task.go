package model

// SizeClassMin and SizeClassMax bound the ordinal task size scale.
const (
	SizeClassMin = 1
	SizeClassMax = 5
)

// DefaultSizeClass is assumed when a task carries no size estimate.
const DefaultSizeClass = 3

// Task is a unit of work with a precedence set. Tasks are immutable for the
// duration of a scheduling run; schedules are recomputed fresh, never patched.
type Task struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Size is the ordinal size class (1–5). Fractional values interpolate
	// between adjacent classes. Zero means no estimate was provided.
	Size float64 `json:"size,omitempty" yaml:"size,omitempty"`

	// Resolved marks work that is already done; resolved tasks are never
	// scheduled and complete at the run's start date.
	Resolved bool `json:"resolved,omitempty" yaml:"resolved,omitempty"`

	// Assignee pins the task to a specific engineer id. An assignee not on
	// the roster is treated as external and never given additional work.
	Assignee string `json:"assignee,omitempty" yaml:"assignee,omitempty"`

	// ZeroEffort marks tracking/aggregation tasks that consume no engineer
	// time and finish exactly when their last dependency finishes.
	ZeroEffort bool `json:"zero_effort,omitempty" yaml:"zero_effort,omitempty"`
}

// HasSize reports whether the task carries an explicit size estimate.
func (t *Task) HasSize() bool {
	return t.Size > 0
}
