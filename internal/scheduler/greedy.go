// Package scheduler produces the deterministic greedy baseline schedule:
// one feasible, milestone-prioritized pass over the task graph. Fixed inputs
// always yield byte-identical output; the optimizer only ever has to beat
// this baseline, never recompute it.
package scheduler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/roadmap/internal/effort"
	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/pkg/model"
)

// Greedy is the baseline scheduler.
type Greedy struct {
	logger *slog.Logger
}

// New creates a greedy scheduler.
func New(logger *slog.Logger) *Greedy {
	return &Greedy{logger: logger.With("component", "scheduler")}
}

// Run schedules every task in the plan starting from today. Milestone groups
// are processed in ascending deadline order so earlier milestones' resource
// consumption shapes later ones. A cyclic graph refuses to schedule and
// returns the offending cycles in the error.
func (s *Greedy) Run(plan *model.Plan, today model.Date) (*model.Schedule, error) {
	g := graph.New(plan.Tasks)

	topo := g.TopologicalSort()
	if !topo.IsValid {
		return nil, &CycleError{Cycles: topo.Cycles}
	}
	if err := checkRoster(plan); err != nil {
		return nil, err
	}

	membership := Partition(g, plan.Milestones)
	order := ProcessOrder(g, topo.Order, plan.Milestones)

	state := newRunState(plan, today)
	sched := &model.Schedule{Start: today}

	for _, id := range order {
		task, _ := g.Task(id)
		a := s.place(&task, state, membership[id])
		sched.Assignments = append(sched.Assignments, a)
		state.ends[id] = a.End
	}

	s.logger.Debug("greedy pass complete",
		"tasks", len(sched.Assignments), "start", today, "end", sched.EndDate())
	return sched, nil
}

// place produces the assignment for one task given the run state so far.
func (s *Greedy) place(task *model.Task, st *runState, milestone string) model.Assignment {
	// Already-done work completes at today and consumes nothing.
	if task.Resolved {
		return model.Assignment{
			TaskID:    task.ID,
			Start:     st.today,
			End:       st.today,
			Milestone: milestone,
			Completed: true,
		}
	}

	earliest := st.today
	for _, dep := range task.DependsOn {
		if end, ok := st.ends[dep]; ok {
			earliest = model.MaxDate(earliest, end)
		}
	}

	// Zero-effort tasks finish the moment their last dependency does.
	if task.ZeroEffort {
		return model.Assignment{
			TaskID:     task.ID,
			Start:      earliest,
			End:        earliest,
			Milestone:  milestone,
			ZeroEffort: true,
		}
	}

	candidates := st.candidates(task)

	var best *model.Engineer
	var bestStart, bestEnd model.Date
	var bestEst effort.Estimate
	for _, eng := range candidates {
		est := effort.ForTask(task, eng)
		start := effort.NextWorkingDay(model.MaxDate(earliest, st.nextAvail[eng.ID]), eng)
		end := effort.ProjectForward(start, est.Days, eng)
		// Strict improvement only: ties keep the earlier roster entry.
		if best == nil || end.Before(bestEnd) {
			best, bestStart, bestEnd, bestEst = eng, start, end, est
		}
	}

	st.nextAvail[best.ID] = bestEnd.AddDays(1)

	return model.Assignment{
		TaskID:     task.ID,
		EngineerID: best.ID,
		Start:      bestStart,
		End:        bestEnd,
		EffortDays: bestEst.Days,
		Estimated:  bestEst.WasEstimated,
		Milestone:  milestone,
	}
}

// runState carries the mutable bookkeeping of one greedy pass.
type runState struct {
	today     model.Date
	roster    []model.Engineer
	byID      map[string]*model.Engineer
	external  model.Engineer
	ends      map[string]model.Date // scheduled task id -> end date
	nextAvail map[string]model.Date // engineer id -> first free date
}

func newRunState(plan *model.Plan, today model.Date) *runState {
	st := &runState{
		today:     today,
		roster:    plan.Engineers,
		byID:      make(map[string]*model.Engineer, len(plan.Engineers)),
		external:  model.ExternalEngineer(),
		ends:      make(map[string]model.Date),
		nextAvail: make(map[string]model.Date),
	}
	for i := range plan.Engineers {
		e := &plan.Engineers[i]
		st.byID[e.ID] = e
		st.nextAvail[e.ID] = today
	}
	st.nextAvail[st.external.ID] = today
	return st
}

// candidates returns the engineers eligible for a task, in stable roster
// order. A fixed assignee restricts the choice to that engineer; an unknown
// assignee maps to the external placeholder. External roster entries never
// receive unconstrained work.
func (st *runState) candidates(task *model.Task) []*model.Engineer {
	if task.Assignee != "" {
		if eng, ok := st.byID[task.Assignee]; ok {
			return []*model.Engineer{eng}
		}
		return []*model.Engineer{&st.external}
	}

	var out []*model.Engineer
	for i := range st.roster {
		if st.roster[i].External {
			continue
		}
		out = append(out, &st.roster[i])
	}
	return out
}

// checkRoster refuses plans where an unconstrained task has nobody to land
// on. Fixed, resolved, and zero-effort tasks need no roster entry.
func checkRoster(plan *model.Plan) error {
	for i := range plan.Engineers {
		if !plan.Engineers[i].External {
			return nil
		}
	}
	for _, t := range plan.Tasks {
		if !t.Resolved && !t.ZeroEffort && t.Assignee == "" {
			return fmt.Errorf("task %s needs an engineer but the roster has no assignable entries", t.ID)
		}
	}
	return nil
}

// CycleError reports that the dependency graph cannot be scheduled.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, " -> ")
	}
	return fmt.Sprintf("dependency graph contains cycles: %s", strings.Join(parts, "; "))
}
