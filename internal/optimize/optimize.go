package optimize

import "github.com/me/roadmap/pkg/model"

// Strategy names the search algorithm a run used.
type Strategy string

const (
	StrategyExact  Strategy = "branch-and-bound"
	StrategyAnneal Strategy = "annealing"
)

// Options tunes one optimizer invocation.
type Options struct {
	// Iterations bounds the annealing run; ignored by exact search.
	Iterations int

	// Seed makes annealing reproducible.
	Seed uint64

	// Resume continues a prior annealing run. Nil starts fresh from a
	// vector biased toward the baseline.
	Resume *State

	// StartTemp overrides the initial temperature (reheat runs start hot
	// again instead of resuming a cooled state).
	StartTemp float64

	// Cooling overrides the geometric decay factor.
	Cooling float64
}

// Result is one optimizer candidate.
type Result struct {
	Strategy Strategy
	Vector   []int
	Schedule *model.Schedule
	Score    model.Score

	// Improved is true when the candidate strictly beats the baseline.
	Improved bool

	// State allows resuming annealing runs; nil for exact search.
	State *State

	// Iterations actually evaluated.
	Iterations int
}

// Run searches for a schedule beating the baseline. Instances with at most
// ExactThreshold searchable tasks are solved exactly; larger ones anneal.
// When nothing beats the baseline the baseline itself comes back with
// Improved=false — non-convergence is an answer, not an error.
func Run(in *Instance, baseline *model.Schedule, baselineScore model.Score, opts Options) Result {
	if len(in.Searchable) <= ExactThreshold {
		vec, sched, sc, found := BranchAndBound(in, baselineScore)
		if !found {
			return Result{Strategy: StrategyExact, Schedule: baseline, Score: baselineScore}
		}
		return Result{Strategy: StrategyExact, Vector: vec, Schedule: sched, Score: sc, Improved: true}
	}

	res := Anneal(in, AnnealOptions{
		Iterations: opts.Iterations,
		StartTemp:  opts.StartTemp,
		Cooling:    opts.Cooling,
		Seed:       opts.Seed,
		Resume:     opts.Resume,
		Bias:       in.VectorOf(baseline),
	})

	out := Result{
		Strategy:   StrategyAnneal,
		Vector:     res.Vector,
		Schedule:   res.Schedule,
		Score:      res.Score,
		State:      &res.State,
		Iterations: res.Iterations,
	}
	if res.Score.Better(baselineScore) {
		out.Improved = true
	} else {
		// Never report worse than the baseline.
		out.Vector = nil
		out.Schedule = baseline
		out.Score = baselineScore
	}
	return out
}
