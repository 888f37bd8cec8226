package model

import "sort"

// Milestone is a named deadline anchored to a task. A milestone is met when
// every task in its anchor's transitive dependency closure, plus the anchor
// itself, completes on or before the freeze date.
type Milestone struct {
	Name         string `json:"name" yaml:"name"`
	AnchorTaskID string `json:"anchor_task_id" yaml:"anchor_task_id"`
	Deadline     Date   `json:"deadline" yaml:"deadline"`

	// Freeze is the effective cut-off (freeze ≤ deadline, enforced upstream).
	Freeze Date `json:"freeze" yaml:"freeze"`
}

// SortMilestones orders milestones by ascending deadline, name as tiebreak.
// Milestones are totally ordered by deadline; the name tiebreak only keeps
// degenerate fixtures deterministic.
func SortMilestones(ms []Milestone) []Milestone {
	out := make([]Milestone, len(ms))
	copy(out, ms)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deadline != out[j].Deadline {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
