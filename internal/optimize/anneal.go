package optimize

import (
	"math"
	"math/rand/v2"

	"github.com/me/roadmap/pkg/model"
)

// scalarK weights deadlines over makespan in the acceptance proxy. The
// proxy exists only for the "accept this worse neighbor" coin flip; the
// incumbent, the best, and everything reported externally use the strict
// lexicographic comparator.
const scalarK = 1000

// Defaults for the annealing schedule.
const (
	DefaultStartTemp = 50.0
	DefaultCooling   = 0.995
)

// State is the resumable position of an annealing run. Persisting it lets a
// later invocation continue cooling instead of restarting hot.
type State struct {
	Vector      []int   `json:"vector"`
	Temperature float64 `json:"temperature"`
}

// AnnealOptions tunes one annealing run.
type AnnealOptions struct {
	// Iterations is the number of counted (feasible) neighbor evaluations.
	Iterations int

	// StartTemp and Cooling define the geometric cooling schedule.
	// Zero values take the package defaults.
	StartTemp float64
	Cooling   float64

	// Seed makes the run reproducible.
	Seed uint64

	// Resume continues from a previous run's final state instead of
	// starting from a biased-random vector.
	Resume *State

	// Bias is a reference vector (normally the greedy baseline's) that the
	// random initial vector leans toward. Ignored when resuming.
	Bias []int
}

// AnnealResult carries the best candidate found plus the final state for
// resumption.
type AnnealResult struct {
	Vector     []int
	Schedule   *model.Schedule
	Score      model.Score
	State      State
	Iterations int
}

// Anneal runs simulated annealing over assignment vectors. Each iteration
// mutates one task's engineer, keeps strictly better neighbors outright,
// and takes worse ones with probability exp(Δ/temperature) on the scalar
// proxy. Infeasible neighbors are discarded without consuming iterations.
func Anneal(in *Instance, opts AnnealOptions) AnnealResult {
	if opts.StartTemp <= 0 {
		opts.StartTemp = DefaultStartTemp
	}
	if opts.Cooling <= 0 || opts.Cooling >= 1 {
		opts.Cooling = DefaultCooling
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	current := in.initialVector(opts, rng)
	temp := opts.StartTemp
	if opts.Resume != nil && opts.Resume.Temperature > 0 {
		temp = opts.Resume.Temperature
	}

	curSched, curScore, ok := in.Evaluate(current)
	if !ok {
		// A corrupt resume vector falls back to the bias / zero vector.
		current = make([]int, len(in.Searchable))
		copy(current, opts.Bias)
		curSched, curScore, _ = in.Evaluate(current)
	}

	best := append([]int(nil), current...)
	bestSched, bestScore := curSched, curScore

	// Nothing to search: a single candidate or no movable tasks.
	if len(in.Searchable) == 0 || len(in.Candidates) < 2 {
		return AnnealResult{
			Vector: best, Schedule: bestSched, Score: bestScore,
			State: State{Vector: append([]int(nil), current...), Temperature: temp},
		}
	}

	counted := 0
	attempts := 0
	maxAttempts := opts.Iterations * 10
	for counted < opts.Iterations && attempts < maxAttempts {
		attempts++

		pos := rng.IntN(len(current))
		old := current[pos]
		next := rng.IntN(len(in.Candidates) - 1)
		if next >= old {
			next++
		}
		current[pos] = next

		neighSched, neighScore, feasible := in.Evaluate(current)
		if !feasible {
			current[pos] = old
			continue
		}
		counted++

		accept := neighScore.Better(curScore)
		if !accept {
			delta := proxy(neighScore) - proxy(curScore)
			accept = rng.Float64() < math.Exp(delta/temp)
		}

		if accept {
			curSched, curScore = neighSched, neighScore
			if neighScore.Better(bestScore) {
				bestScore = neighScore
				bestSched = neighSched
				best = append(best[:0], current...)
			}
		} else {
			current[pos] = old
		}

		temp *= opts.Cooling
	}

	return AnnealResult{
		Vector:     append([]int(nil), best...),
		Schedule:   bestSched,
		Score:      bestScore,
		State:      State{Vector: append([]int(nil), current...), Temperature: temp},
		Iterations: counted,
	}
}

// initialVector picks the starting point: a resumed vector when present and
// well-formed, otherwise a biased-random vector that keeps each position on
// its bias value half the time.
func (in *Instance) initialVector(opts AnnealOptions, rng *rand.Rand) []int {
	if opts.Resume != nil && len(opts.Resume.Vector) == len(in.Searchable) {
		return append([]int(nil), opts.Resume.Vector...)
	}

	vec := make([]int, len(in.Searchable))
	for i := range vec {
		if opts.Bias != nil && i < len(opts.Bias) && rng.Float64() < 0.5 {
			vec[i] = opts.Bias[i]
		} else {
			vec[i] = rng.IntN(len(in.Candidates))
		}
	}
	return vec
}

// proxy flattens a score for the acceptance decision only.
func proxy(s model.Score) float64 {
	return float64(s.DeadlinesMet)*scalarK - float64(s.MakespanDays)
}
