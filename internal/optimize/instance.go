// Package optimize searches for schedules that beat the greedy baseline.
// Small instances get an exact branch-and-bound pass; larger ones run
// resumable simulated annealing. Every candidate is judged by the strict
// lexicographic score comparator, never by a scalarized stand-in.
package optimize

import (
	"fmt"

	"github.com/me/roadmap/internal/effort"
	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/scheduler"
	"github.com/me/roadmap/internal/score"
	"github.com/me/roadmap/pkg/model"
)

// ExactThreshold is the largest searchable-task count handed to
// branch-and-bound; anything bigger anneals.
const ExactThreshold = 10

// Instance is a prepared search problem: the plan, its graph analyses, and
// the searchable-task layout. An Instance is read-only after Prepare and
// safe to evaluate from one goroutine.
type Instance struct {
	plan       *model.Plan
	today      model.Date
	graph      *graph.Graph
	order      []string          // milestone-priority, dependency-respecting
	membership map[string]string // task id -> milestone name

	// Searchable lists the task ids the optimizer may reassign: not
	// resolved, not zero-effort, not pinned to a fixed assignee. The search
	// vector holds one candidate index per entry, in this order.
	Searchable []string

	// Candidates are the engineers eligible for unconstrained work, in
	// stable roster order. Vector values index into this slice.
	Candidates []model.Engineer
}

// Prepare builds a search instance. A cyclic graph cannot be ordered and
// returns the scheduler's cycle error.
func Prepare(plan *model.Plan, today model.Date) (*Instance, error) {
	g := graph.New(plan.Tasks)
	topo := g.TopologicalSort()
	if !topo.IsValid {
		return nil, &scheduler.CycleError{Cycles: topo.Cycles}
	}

	inst := &Instance{
		plan:       plan,
		today:      today,
		graph:      g,
		order:      scheduler.ProcessOrder(g, topo.Order, plan.Milestones),
		membership: scheduler.Partition(g, plan.Milestones),
	}

	for _, e := range plan.Engineers {
		if !e.External {
			inst.Candidates = append(inst.Candidates, e)
		}
	}
	if len(inst.Candidates) == 0 {
		return nil, fmt.Errorf("no assignable engineers on the roster")
	}

	for _, id := range inst.order {
		t, _ := g.Task(id)
		if t.Resolved || t.ZeroEffort || t.Assignee != "" {
			continue
		}
		inst.Searchable = append(inst.Searchable, id)
	}
	return inst, nil
}

// Graph returns the instance's dependency graph.
func (in *Instance) Graph() *graph.Graph { return in.graph }

// Milestones returns the plan's milestones.
func (in *Instance) Milestones() []model.Milestone { return in.plan.Milestones }

// VectorOf extracts the search vector a schedule corresponds to; tasks
// assigned off the candidate list fall back to index 0. Used to seed the
// search from the greedy baseline.
func (in *Instance) VectorOf(s *model.Schedule) []int {
	index := make(map[string]int, len(in.Candidates))
	for i, e := range in.Candidates {
		index[e.ID] = i
	}
	vec := make([]int, len(in.Searchable))
	for i, id := range in.Searchable {
		if a := s.Assignment(id); a != nil {
			if ci, ok := index[a.EngineerID]; ok {
				vec[i] = ci
			}
		}
	}
	return vec
}

// Evaluate runs the feasibility pass for a search vector: tasks are
// processed in milestone-priority dependency order with the vector's
// engineer forced for each searchable task. It returns the resulting
// schedule and score, or ok=false when the vector cannot produce a feasible
// schedule (wrong length or an out-of-range candidate index).
func (in *Instance) Evaluate(vector []int) (*model.Schedule, model.Score, bool) {
	if len(vector) != len(in.Searchable) {
		return nil, model.Score{}, false
	}
	for _, ci := range vector {
		if ci < 0 || ci >= len(in.Candidates) {
			return nil, model.Score{}, false
		}
	}

	forced := make(map[string]*model.Engineer, len(vector))
	for i, id := range in.Searchable {
		forced[id] = &in.Candidates[vector[i]]
	}

	st := newEvalState(in)
	sched := &model.Schedule{Start: in.today}
	for _, id := range in.order {
		task, _ := in.graph.Task(id)
		a := st.place(&task, forced[id], in.membership[id])
		sched.Assignments = append(sched.Assignments, a)
		st.ends[id] = a.End
	}

	return sched, score.Evaluate(in.graph, sched, in.plan.Milestones), true
}

// evalState mirrors the greedy run state for forced-assignment evaluation.
type evalState struct {
	inst      *Instance
	byID      map[string]*model.Engineer
	external  model.Engineer
	ends      map[string]model.Date
	nextAvail map[string]model.Date
}

func newEvalState(in *Instance) *evalState {
	st := &evalState{
		inst:      in,
		byID:      make(map[string]*model.Engineer, len(in.plan.Engineers)),
		external:  model.ExternalEngineer(),
		ends:      make(map[string]model.Date, len(in.order)),
		nextAvail: make(map[string]model.Date, len(in.plan.Engineers)+1),
	}
	for i := range in.plan.Engineers {
		e := &in.plan.Engineers[i]
		st.byID[e.ID] = e
		st.nextAvail[e.ID] = in.today
	}
	st.nextAvail[st.external.ID] = in.today
	return st
}

// place assigns one task. forced is non-nil exactly for searchable tasks;
// fixed-assignee tasks resolve to their pinned engineer or the external
// placeholder, matching the greedy pass.
func (st *evalState) place(task *model.Task, forced *model.Engineer, milestone string) model.Assignment {
	today := st.inst.today

	if task.Resolved {
		return model.Assignment{TaskID: task.ID, Start: today, End: today, Milestone: milestone, Completed: true}
	}

	earliest := today
	for _, dep := range task.DependsOn {
		if end, ok := st.ends[dep]; ok {
			earliest = model.MaxDate(earliest, end)
		}
	}

	if task.ZeroEffort {
		return model.Assignment{TaskID: task.ID, Start: earliest, End: earliest, Milestone: milestone, ZeroEffort: true}
	}

	eng := forced
	if eng == nil {
		if pinned, ok := st.byID[task.Assignee]; ok && task.Assignee != "" {
			eng = pinned
		} else {
			eng = &st.external
		}
	}

	est := effort.ForTask(task, eng)
	start := effort.NextWorkingDay(model.MaxDate(earliest, st.nextAvail[eng.ID]), eng)
	end := effort.ProjectForward(start, est.Days, eng)
	st.nextAvail[eng.ID] = end.AddDays(1)

	return model.Assignment{
		TaskID:     task.ID,
		EngineerID: eng.ID,
		Start:      start,
		End:        end,
		EffortDays: est.Days,
		Estimated:  est.WasEstimated,
		Milestone:  milestone,
	}
}
