package pool

import (
	"github.com/me/roadmap/internal/optimize"
	"github.com/me/roadmap/pkg/model"
)

// Strategy selects a worker's search behavior for a round.
type Strategy int

const (
	// StrategyContinuous resumes the worker's prior vector and temperature,
	// cooling slowly across rounds.
	StrategyContinuous Strategy = iota + 1

	// StrategyReheat restarts hot each round to escape shared local optima.
	StrategyReheat
)

func (s Strategy) String() string {
	switch s {
	case StrategyContinuous:
		return "continuous"
	case StrategyReheat:
		return "reheat"
	default:
		return "unknown"
	}
}

// request is the start message handed to one worker: a full input snapshot
// plus per-run options. Workers never share references; the plan is a deep
// copy and the resume state is owned by the worker for the round.
type request struct {
	worker     int
	strategy   Strategy
	iterations int
	seed       uint64
	startTemp  float64
	cooling    float64
	resume     *optimize.State

	plan          *model.Plan
	today         model.Date
	baseline      *model.Schedule
	baselineScore model.Score
}

// eventKind tags worker result messages. Dispatch is by enum, not string.
type eventKind int

const (
	eventCompleted eventKind = iota + 1
	eventFailed
)

// event is a self-contained worker result message.
type event struct {
	kind     eventKind
	worker   int
	strategy Strategy

	// result is set for eventCompleted.
	result *optimize.Result

	// err is set for eventFailed.
	err error
}
