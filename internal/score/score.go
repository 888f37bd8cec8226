// Package score evaluates schedules against milestones. The lexicographic
// Score ordering (deadlines met, then lateness, then makespan) is the single
// acceptance criterion for every search strategy in this repo.
package score

import (
	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/pkg/model"
)

// Evaluate scores a schedule. For each milestone the completion date is the
// latest end across the anchor's transitive dependency closure plus the
// anchor itself; completion on or before the freeze date counts as met,
// anything later accumulates lateness in days. Makespan is the schedule's
// overall span in working days from its start date.
func Evaluate(g *graph.Graph, s *model.Schedule, milestones []model.Milestone) model.Score {
	var sc model.Score

	for _, m := range milestones {
		completion, ok := CompletionDate(g, s, m)
		if !ok {
			continue
		}
		if !completion.After(m.Freeze) {
			sc.DeadlinesMet++
		} else {
			sc.TotalLateness += model.DaysBetween(m.Freeze, completion)
		}
	}

	sc.MakespanDays = workingDaySpan(s.Start, s.EndDate())
	return sc
}

// CompletionDate returns the completion date of a milestone under the given
// schedule: the max end over its closure. ok is false when the anchor task
// is unknown or nothing in the closure was scheduled.
func CompletionDate(g *graph.Graph, s *model.Schedule, m model.Milestone) (model.Date, bool) {
	closure := g.Closure(m.AnchorTaskID)
	if len(closure) == 0 {
		return "", false
	}

	var completion model.Date
	found := false
	for id := range closure {
		a := s.Assignment(id)
		if a == nil {
			continue
		}
		found = true
		completion = model.MaxDate(completion, a.End)
	}
	return completion, found
}

// workingDaySpan counts weekdays strictly after from, up to and including
// to. A schedule ending the day it starts has zero span.
func workingDaySpan(from, to model.Date) int {
	if to.IsZero() || !to.After(from) {
		return 0
	}
	span := 0
	for d := from.AddDays(1); !d.After(to); d = d.AddDays(1) {
		if !d.IsWeekend() {
			span++
		}
	}
	return span
}
