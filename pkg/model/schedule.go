package model

// Assignment records where one task landed in a schedule.
type Assignment struct {
	TaskID string `json:"task_id"`

	// EngineerID is empty for resolved and zero-effort tasks, which consume
	// no engineer capacity.
	EngineerID string `json:"engineer_id,omitempty"`

	Start Date `json:"start"`
	End   Date `json:"end"`

	// EffortDays is the whole working days of effort, after dividing the
	// base duration by the engineer's availability fraction.
	EffortDays int `json:"effort_days"`

	// Estimated is set when the task had no size and the default class was
	// assumed.
	Estimated bool `json:"estimated,omitempty"`

	// Milestone names the single milestone this task serves, or "" when the
	// task is unreachable from every milestone anchor.
	Milestone string `json:"milestone,omitempty"`

	// Completed marks tasks that were already resolved before the run.
	Completed bool `json:"completed,omitempty"`

	ZeroEffort bool `json:"zero_effort,omitempty"`
}

// Schedule is the full set of assignments produced by one scheduling pass.
// Assignments appear in processing order, which is deterministic for fixed
// inputs.
type Schedule struct {
	Start       Date         `json:"start"`
	Assignments []Assignment `json:"assignments"`
}

// Assignment returns the assignment for a task id, or nil if absent.
func (s *Schedule) Assignment(taskID string) *Assignment {
	for i := range s.Assignments {
		if s.Assignments[i].TaskID == taskID {
			return &s.Assignments[i]
		}
	}
	return nil
}

// EndDate returns the latest end date across all assignments, or the
// schedule start when empty.
func (s *Schedule) EndDate() Date {
	end := s.Start
	for i := range s.Assignments {
		end = MaxDate(end, s.Assignments[i].End)
	}
	return end
}

// DeadlineRisk flags an assignment whose end date falls past its own
// milestone's freeze or deadline. Assignments are never compared against
// milestones they do not serve.
type DeadlineRisk struct {
	TaskID    string `json:"task_id"`
	Milestone string `json:"milestone"`
	End       Date   `json:"end"`
	Freeze    Date   `json:"freeze"`
	Deadline  Date   `json:"deadline"`

	// Level is "at-risk" (past freeze) or "late" (past deadline).
	Level string `json:"level"`
}
