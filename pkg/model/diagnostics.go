package model

// OrphanedDep is an edge pointing at a task id that does not exist.
type OrphanedDep struct {
	TaskID    string `json:"task_id"`
	DependsOn string `json:"depends_on"`
}

// Diagnostics bundles data-integrity findings. Every field is informational:
// integrity problems are reported as data, never raised as errors. Only
// cycles block scheduling, because a cyclic graph has no valid order.
type Diagnostics struct {
	// Cycles lists every distinct dependency cycle, including self-loops.
	Cycles [][]string `json:"cycles,omitempty"`

	// OrphanedDeps lists edges whose target task is unknown.
	OrphanedDeps []OrphanedDep `json:"orphaned_deps,omitempty"`

	// DuplicateTitles groups task ids sharing a title, compared
	// case-insensitively.
	DuplicateTitles [][]string `json:"duplicate_titles,omitempty"`

	// MissingSize lists unresolved, non-zero-effort tasks with no estimate.
	MissingSize []string `json:"missing_size,omitempty"`

	// MissingAssignee lists tasks naming an assignee not on the roster.
	MissingAssignee []string `json:"missing_assignee,omitempty"`
}

// Schedulable reports whether the graph may be scheduled at all.
func (d *Diagnostics) Schedulable() bool {
	return len(d.Cycles) == 0
}
