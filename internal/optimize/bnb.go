package optimize

import (
	"sort"

	"github.com/me/roadmap/pkg/model"
)

// BranchAndBound exhaustively searches assignment vectors for instances
// with at most ExactThreshold searchable tasks. incumbent seeds the search
// (normally the greedy baseline); the returned vector is nil when no
// complete vector strictly beats it.
//
// Candidates at each depth are tried best-first by the completion time they
// give the task. A branch is pruned only once the incumbent already meets
// every milestone and the branch's partial makespan can no longer beat the
// incumbent's — a branch that might still newly satisfy a milestone is
// never discarded.
func BranchAndBound(in *Instance, incumbent model.Score) (vector []int, sched *model.Schedule, sc model.Score, found bool) {
	bestScore := incumbent
	var bestVec []int
	var bestSched *model.Schedule

	vec := make([]int, len(in.Searchable))
	allMilestones := len(in.plan.Milestones)

	var descend func(depth int)
	descend = func(depth int) {
		if depth == len(in.Searchable) {
			s, scr, ok := in.Evaluate(vec)
			if ok && scr.Better(bestScore) {
				bestScore = scr
				bestVec = append([]int(nil), vec...)
				bestSched = s
			}
			return
		}

		// The makespan bound only applies once every milestone is already
		// met: tightening it earlier could discard a branch that would
		// newly satisfy a milestone.
		canPrune := bestScore.DeadlinesMet == allMilestones && allMilestones > 0

		for _, ci := range in.candidateOrder(vec, depth) {
			vec[depth] = ci

			if canPrune {
				if bound, ok := in.partialMakespan(vec, depth+1); ok && bound >= bestScore.MakespanDays {
					continue
				}
			}
			descend(depth + 1)
		}
		vec[depth] = 0
	}

	descend(0)
	if bestVec == nil {
		return nil, nil, incumbent, false
	}
	return bestVec, bestSched, bestScore, true
}

// candidateOrder returns candidate indexes for the task at depth, sorted by
// the completion time each gives it under the partial vector, roster order
// as tiebreak.
func (in *Instance) candidateOrder(vec []int, depth int) []int {
	type option struct {
		index int
		end   model.Date
	}

	opts := make([]option, 0, len(in.Candidates))
	for ci := range in.Candidates {
		vec[depth] = ci
		end, ok := in.taskEnd(vec, depth)
		if !ok {
			continue
		}
		opts = append(opts, option{index: ci, end: end})
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].end.Before(opts[j].end) })

	order := make([]int, len(opts))
	for i, o := range opts {
		order[i] = o.index
	}
	return order
}

// taskEnd runs the feasibility pass far enough to learn when the task at
// the given searchable position completes. Positions past assigned get the
// greedy default (candidate 0), which only affects ordering, not
// correctness.
func (in *Instance) taskEnd(vec []int, position int) (model.Date, bool) {
	full := make([]int, len(in.Searchable))
	copy(full, vec[:position+1])

	s, _, ok := in.Evaluate(full)
	if !ok {
		return "", false
	}
	a := s.Assignment(in.Searchable[position])
	if a == nil {
		return "", false
	}
	return a.End, true
}

// partialMakespan evaluates the vector with unassigned positions defaulted
// and returns the makespan of the searchable tasks fixed so far. It is a
// lower bound on any completion of the branch: adding work never shortens a
// schedule.
func (in *Instance) partialMakespan(vec []int, assigned int) (int, bool) {
	full := make([]int, len(in.Searchable))
	copy(full, vec[:assigned])

	s, _, ok := in.Evaluate(full)
	if !ok {
		return 0, false
	}

	var latest model.Date
	for i := 0; i < assigned; i++ {
		if a := s.Assignment(in.Searchable[i]); a != nil {
			latest = model.MaxDate(latest, a.End)
		}
	}
	if latest.IsZero() {
		return 0, false
	}
	return workingSpan(in.today, latest), true
}

// workingSpan counts weekdays strictly after from up to and including to.
func workingSpan(from, to model.Date) int {
	if to.IsZero() || !to.After(from) {
		return 0
	}
	n := 0
	for d := from.AddDays(1); !d.After(to); d = d.AddDays(1) {
		if !d.IsWeekend() {
			n++
		}
	}
	return n
}
