package scheduler

import "github.com/me/roadmap/pkg/model"

// DeadlineRisks flags non-completed assignments whose end date falls past
// their own milestone's freeze or deadline. An assignment is only ever
// measured against the milestone it serves.
func DeadlineRisks(s *model.Schedule, milestones []model.Milestone) []model.DeadlineRisk {
	byName := make(map[string]model.Milestone, len(milestones))
	for _, m := range milestones {
		byName[m.Name] = m
	}

	var risks []model.DeadlineRisk
	for _, a := range s.Assignments {
		if a.Completed || a.Milestone == "" {
			continue
		}
		m, ok := byName[a.Milestone]
		if !ok {
			continue
		}

		level := ""
		switch {
		case a.End.After(m.Deadline):
			level = "late"
		case a.End.After(m.Freeze):
			level = "at-risk"
		default:
			continue
		}

		risks = append(risks, model.DeadlineRisk{
			TaskID:    a.TaskID,
			Milestone: m.Name,
			End:       a.End,
			Freeze:    m.Freeze,
			Deadline:  m.Deadline,
			Level:     level,
		})
	}
	return risks
}
