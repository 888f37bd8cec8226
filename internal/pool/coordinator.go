// Package pool fans the optimizer out across a bounded set of parallel
// workers and folds their candidates into a single running best. The
// coordinator itself is single-threaded: workers receive immutable
// snapshots, return self-contained result messages, and all merging happens
// between rounds.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/me/roadmap/internal/metrics"
	"github.com/me/roadmap/internal/optimize"
	"github.com/me/roadmap/pkg/model"
)

// MaxWorkers caps the pool regardless of core count.
const MaxWorkers = 8

// Config holds coordinator configuration.
type Config struct {
	// Workers is the pool width; zero means cores−1 clamped to [1, MaxWorkers].
	Workers int

	// IterationsPerWorker is each worker's annealing budget per round.
	IterationsPerWorker int

	// ReheatEvery marks every Nth worker as a reheat worker; the rest run
	// continuous. The first worker is always continuous.
	ReheatEvery int

	// Seed is the base RNG seed; workers and rounds derive from it.
	Seed uint64

	// ContinuousCooling and ReheatCooling tune the two worker kinds.
	// Continuous workers cool slowly because their state spans rounds.
	ContinuousCooling float64
	ReheatCooling     float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		IterationsPerWorker: 8000,
		ReheatEvery:         4,
		Seed:                1,
		ContinuousCooling:   0.9995,
		ReheatCooling:       0.995,
	}
}

// StateStore persists per-worker annealing state between exhaustive rounds.
// Implemented by the sqlite store; nil disables persistence.
type StateStore interface {
	SaveWorkerState(ctx context.Context, ws *model.WorkerState) error
	LoadWorkerStates(ctx context.Context, planID string) ([]*model.WorkerState, error)
}

// Result is the pool's answer for a plan.
type Result struct {
	Schedule *model.Schedule `json:"schedule"`
	Score    model.Score     `json:"score"`

	// Improved is false when no candidate beat the greedy baseline; the
	// baseline is then the reported schedule.
	Improved bool `json:"improved"`

	Rounds     int   `json:"rounds"`
	Iterations int64 `json:"iterations"`
	Workers    int   `json:"workers"`
}

// Coordinator owns the pool. It is not safe for concurrent use; one
// optimization request runs at a time and a superseding request should
// cancel the previous context.
type Coordinator struct {
	cfg       Config
	logger    *slog.Logger
	collector metrics.Collector
	planID    string            // plan the states belong to
	states    []*optimize.State // per-worker, survives rounds
	store     StateStore
}

// Option configures optional Coordinator dependencies.
type Option func(*Coordinator)

// WithStateStore persists per-worker state after each round and resumes
// from persisted state on the first round of a run.
func WithStateStore(st StateStore) Option {
	return func(c *Coordinator) { c.store = st }
}

// WithCollector sets the metrics collector; defaults to the no-op one.
func WithCollector(col metrics.Collector) Option {
	return func(c *Coordinator) { c.collector = col }
}

// New creates a coordinator.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() - 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Workers > MaxWorkers {
		cfg.Workers = MaxWorkers
	}
	if cfg.IterationsPerWorker <= 0 {
		cfg.IterationsPerWorker = DefaultConfig().IterationsPerWorker
	}
	if cfg.ReheatEvery <= 0 {
		cfg.ReheatEvery = DefaultConfig().ReheatEvery
	}
	if cfg.ContinuousCooling <= 0 || cfg.ContinuousCooling >= 1 {
		cfg.ContinuousCooling = DefaultConfig().ContinuousCooling
	}
	if cfg.ReheatCooling <= 0 || cfg.ReheatCooling >= 1 {
		cfg.ReheatCooling = DefaultConfig().ReheatCooling
	}

	c := &Coordinator{
		cfg:       cfg,
		logger:    logger.With("component", "pool"),
		collector: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Optimize runs a single round of parallel search against the baseline.
func (c *Coordinator) Optimize(ctx context.Context, plan *model.Plan, today model.Date,
	baseline *model.Schedule, baselineScore model.Score) (*Result, error) {
	return c.run(ctx, plan, today, baseline, baselineScore, time.Time{})
}

// OptimizeUntil is the exhaustive mode: it re-launches all workers with
// preserved per-worker state until the wall-clock deadline elapses or every
// milestone is met. The deadline is checked only between rounds; a round
// always runs to completion.
func (c *Coordinator) OptimizeUntil(ctx context.Context, plan *model.Plan, today model.Date,
	baseline *model.Schedule, baselineScore model.Score, deadline time.Time) (*Result, error) {
	return c.run(ctx, plan, today, baseline, baselineScore, deadline)
}

func (c *Coordinator) run(ctx context.Context, plan *model.Plan, today model.Date,
	baseline *model.Schedule, baselineScore model.Score, deadline time.Time) (*Result, error) {

	probe, err := optimize.Prepare(plan, today)
	if err != nil {
		return nil, fmt.Errorf("prepare search instance: %w", err)
	}

	workers := c.cfg.Workers
	exact := len(probe.Searchable) <= optimize.ExactThreshold
	if exact {
		// Exact search is deterministic; extra workers would duplicate it.
		workers = 1
	}
	c.ensureStates(ctx, plan.ID, len(probe.Searchable), workers)

	best := &Result{Schedule: baseline, Score: baselineScore, Workers: workers}
	exhaustive := !deadline.IsZero()

	round := 0
	for {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		roundStart := time.Now()
		events, err := c.launchRound(ctx, plan, today, baseline, baselineScore, workers, round)
		if err != nil {
			return best, err
		}

		// Merge strictly in round-complete order: the whole round's
		// candidates are folded before anything is reported.
		for _, ev := range events {
			switch ev.kind {
			case eventCompleted:
				c.collector.CandidateReturned(ev.result.Improved)
				c.adopt(best, ev)
			case eventFailed:
				// One worker failing never aborts its siblings.
				c.collector.WorkerFailed()
				c.logger.Error("worker failed",
					"worker", ev.worker, "strategy", ev.strategy, "round", round, "error", ev.err)
			}
		}

		best.Rounds = round + 1
		c.collector.RoundCompleted(time.Since(roundStart).Seconds())
		c.collector.BestScore(best.Score)
		c.persistStates(ctx, plan.ID)

		c.logger.Info("round complete",
			"round", round, "workers", workers, "best", best.Score, "improved", best.Improved)

		round++
		if !exhaustive {
			return best, nil
		}
		if exact {
			// Branch-and-bound already searched the whole space; more
			// rounds would only recompute the same optimum.
			c.logger.Info("exact search complete", "rounds", round)
			return best, nil
		}
		if best.Score.DeadlinesMet >= len(plan.Milestones) && len(plan.Milestones) > 0 {
			c.logger.Info("all milestones met, stopping early", "rounds", round)
			return best, nil
		}
		if !time.Now().Before(deadline) {
			c.logger.Info("wall-clock budget elapsed", "rounds", round)
			return best, nil
		}
	}
}

// launchRound starts one worker goroutine per slot and joins them all. The
// events channel is buffered so abandoned workers can still send without
// leaking when the context is cancelled mid-round.
func (c *Coordinator) launchRound(ctx context.Context, plan *model.Plan, today model.Date,
	baseline *model.Schedule, baselineScore model.Score, workers, round int) ([]event, error) {

	ch := make(chan event, workers)
	for w := 0; w < workers; w++ {
		req := c.buildRequest(plan, today, baseline, baselineScore, w, round)
		go runWorker(req, ch)
	}

	events := make([]event, 0, workers)
	for len(events) < workers {
		select {
		case <-ctx.Done():
			// Superseded: in-flight work is discarded, not awaited, and a
			// stale round can never overwrite a newer best.
			return nil, ctx.Err()
		case ev := <-ch:
			events = append(events, ev)
		}
	}
	return events, nil
}

// buildRequest assembles one worker's snapshot and options.
func (c *Coordinator) buildRequest(plan *model.Plan, today model.Date,
	baseline *model.Schedule, baselineScore model.Score, worker, round int) request {

	strategy := StrategyContinuous
	cooling := c.cfg.ContinuousCooling
	startTemp := 0.0 // optimizer default
	var resume *optimize.State
	if worker > 0 && (worker+1)%c.cfg.ReheatEvery == 0 {
		strategy = StrategyReheat
		cooling = c.cfg.ReheatCooling
		startTemp = optimize.DefaultStartTemp
	} else if c.states[worker] != nil {
		resume = &optimize.State{
			Vector:      append([]int(nil), c.states[worker].Vector...),
			Temperature: c.states[worker].Temperature,
		}
	}

	return request{
		worker:        worker,
		strategy:      strategy,
		iterations:    c.cfg.IterationsPerWorker,
		seed:          c.cfg.Seed + uint64(round)*1000 + uint64(worker),
		startTemp:     startTemp,
		cooling:       cooling,
		resume:        resume,
		plan:          plan.Clone(),
		today:         today,
		baseline:      baseline,
		baselineScore: baselineScore,
	}
}

// runWorker executes one optimizer run and reports a single self-contained
// event. Panics are converted to failure events so a bad worker cannot take
// down the process.
func runWorker(req request, ch chan<- event) {
	defer func() {
		if r := recover(); r != nil {
			ch <- event{kind: eventFailed, worker: req.worker, strategy: req.strategy, err: fmt.Errorf("worker panic: %v", r)}
		}
	}()

	in, err := optimize.Prepare(req.plan, req.today)
	if err != nil {
		ch <- event{kind: eventFailed, worker: req.worker, strategy: req.strategy, err: err}
		return
	}

	res := optimize.Run(in, req.baseline, req.baselineScore, optimize.Options{
		Iterations: req.iterations,
		Seed:       req.seed,
		StartTemp:  req.startTemp,
		Resume:     req.resume,
		Cooling:    req.cooling,
	})
	ch <- event{kind: eventCompleted, worker: req.worker, strategy: req.strategy, result: &res}
}

// adopt folds one completed candidate into the running best. The displayed
// best is monotonic: candidates that fail to beat it (or the baseline,
// which seeds it) are discarded.
func (c *Coordinator) adopt(best *Result, ev event) {
	res := ev.result
	if res.State != nil {
		c.states[ev.worker] = res.State
	}
	best.Iterations += int64(res.Iterations)

	if !res.Improved || !res.Score.Better(best.Score) {
		return
	}
	best.Schedule = res.Schedule
	best.Score = res.Score
	best.Improved = true
	c.logger.Debug("adopted candidate",
		"worker", ev.worker, "strategy", ev.strategy, "algorithm", res.Strategy, "score", res.Score)
}

// ensureStates sizes the per-worker state slice and, when a store is
// configured, seeds it from persisted state of matching shape. State never
// carries over between plans: a plan change resets the slice.
func (c *Coordinator) ensureStates(ctx context.Context, planID string, vectorLen, workers int) {
	if planID != c.planID || len(c.states) != workers {
		c.planID = planID
		c.states = make([]*optimize.State, workers)
	}
	if c.store == nil {
		return
	}

	saved, err := c.store.LoadWorkerStates(ctx, planID)
	if err != nil {
		c.logger.Warn("load worker states", "plan_id", planID, "error", err)
		return
	}
	for _, ws := range saved {
		if ws.WorkerID < 0 || ws.WorkerID >= workers || len(ws.Vector) != vectorLen {
			continue
		}
		if c.states[ws.WorkerID] == nil {
			c.states[ws.WorkerID] = &optimize.State{Vector: ws.Vector, Temperature: ws.Temperature}
		}
	}
}

// persistStates writes the current per-worker states; persistence errors
// are logged, never fatal.
func (c *Coordinator) persistStates(ctx context.Context, planID string) {
	if c.store == nil {
		return
	}
	for w, st := range c.states {
		if st == nil {
			continue
		}
		ws := &model.WorkerState{
			PlanID:      planID,
			WorkerID:    w,
			Vector:      st.Vector,
			Temperature: st.Temperature,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := c.store.SaveWorkerState(ctx, ws); err != nil {
			c.logger.Warn("persist worker state", "worker", w, "error", err)
		}
	}
}
