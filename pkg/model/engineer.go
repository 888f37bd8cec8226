package model

// ExternalEngineerID is the placeholder roster entry used when a task names
// an assignee nobody on the roster recognizes. The placeholder only reflects
// pre-existing fixed assignments; it is never handed unconstrained work.
const ExternalEngineerID = "_external"

// Engineer is a schedulable resource on the roster.
type Engineer struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Availability is the fraction of a full working day the engineer can
	// spend on roadmap work (0 < a ≤ 1). Effort divides by this fraction.
	Availability float64 `json:"availability" yaml:"availability"`

	// Unavailable lists date ranges (vacations, rotations) skipped by the
	// calendar projection, in ascending order.
	Unavailable []DateRange `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`

	// External marks engineers outside the roster's control. External
	// engineers keep their fixed assignments but never receive new work.
	External bool `json:"external,omitempty" yaml:"external,omitempty"`
}

// ExternalEngineer returns the shared placeholder for unknown assignees.
func ExternalEngineer() Engineer {
	return Engineer{
		ID:           ExternalEngineerID,
		Name:         "External",
		Availability: 1.0,
		External:     true,
	}
}

// UnavailableOn reports whether the engineer is out on the given date.
func (e *Engineer) UnavailableOn(d Date) bool {
	for _, r := range e.Unavailable {
		if r.Contains(d) {
			return true
		}
	}
	return false
}
