package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/pool"
	"github.com/me/roadmap/internal/scheduler"
	"github.com/me/roadmap/internal/score"
	"github.com/me/roadmap/pkg/model"
)

type runRequest struct {
	// Today overrides the schedule start date (ISO, e.g. "2026-01-05").
	Today string `json:"today"`

	// Exhaustive keeps re-launching optimizer rounds until every milestone
	// is met or BudgetSeconds elapses. Single round when false.
	Exhaustive    bool `json:"exhaustive"`
	BudgetSeconds int  `json:"budget_seconds"`
}

type runResponse struct {
	Run   *model.Run           `json:"run"`
	Risks []model.DeadlineRisk `json:"risks"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plan, ok := s.loadPlan(w, r, reqID)
	if !ok {
		return
	}
	req, ok := s.decodeRunRequest(w, r, reqID)
	if !ok {
		return
	}
	today, ok := s.resolveToday(w, reqID, req.Today)
	if !ok {
		return
	}

	sched, err := s.greedy.Run(plan, today)
	if err != nil {
		s.respondScheduleError(w, reqID, err)
		return
	}

	sc := score.Evaluate(graph.New(plan.Tasks), sched, plan.Milestones)
	run := &model.Run{
		ID:        newRunID(),
		PlanID:    plan.ID,
		Kind:      model.RunKindGreedy,
		Score:     sc,
		Schedule:  sched,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		s.logger.Error("store run", "run_id", run.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to store run"})
		return
	}

	s.logger.Info("greedy run complete", "plan_id", plan.ID, "run_id", run.ID,
		"deadlines_met", sc.DeadlinesMet, "makespan_days", sc.MakespanDays)
	respondCreated(w, reqID, runResponse{
		Run:   run,
		Risks: scheduler.DeadlineRisks(sched, plan.Milestones),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plan, ok := s.loadPlan(w, r, reqID)
	if !ok {
		return
	}
	req, ok := s.decodeRunRequest(w, r, reqID)
	if !ok {
		return
	}
	today, ok := s.resolveToday(w, reqID, req.Today)
	if !ok {
		return
	}

	baseline, err := s.greedy.Run(plan, today)
	if err != nil {
		s.respondScheduleError(w, reqID, err)
		return
	}
	baselineScore := score.Evaluate(graph.New(plan.Tasks), baseline, plan.Milestones)

	coord := s.newPool()
	var result *pool.Result
	if req.Exhaustive {
		budget := time.Duration(req.BudgetSeconds) * time.Second
		if budget <= 0 {
			budget = 30 * time.Second
		}
		result, err = coord.OptimizeUntil(r.Context(), plan, today, baseline, baselineScore, time.Now().Add(budget))
	} else {
		result, err = coord.Optimize(r.Context(), plan, today, baseline, baselineScore)
	}
	if err != nil {
		s.respondScheduleError(w, reqID, err)
		return
	}

	run := &model.Run{
		ID:         newRunID(),
		PlanID:     plan.ID,
		Kind:       model.RunKindOptimize,
		Score:      result.Score,
		Schedule:   result.Schedule,
		Improved:   result.Improved,
		Iterations: result.Iterations,
		Workers:    result.Workers,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateRun(r.Context(), run); err != nil {
		s.logger.Error("store run", "run_id", run.ID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to store run"})
		return
	}

	s.logger.Info("optimize run complete", "plan_id", plan.ID, "run_id", run.ID,
		"improved", run.Improved, "rounds", result.Rounds, "iterations", run.Iterations)
	respondCreated(w, reqID, runResponse{
		Run:   run,
		Risks: scheduler.DeadlineRisks(result.Schedule, plan.Milestones),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get run", "run_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("run", id))
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	planID := chi.URLParam(r, "id")

	runs, err := s.store.ListRunsByPlan(r.Context(), planID)
	if err != nil {
		s.logger.Error("list runs", "plan_id", planID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []*model.Run{}
	}
	respondOK(w, reqID, runs)
}

// --- helpers ---

func newRunID() string {
	return "run_" + uuid.New().String()[:8]
}

func (s *Server) decodeRunRequest(w http.ResponseWriter, r *http.Request, reqID string) (runRequest, bool) {
	var req runRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("decode request: "+err.Error()))
		return req, false
	}
	return req, true
}

func (s *Server) resolveToday(w http.ResponseWriter, reqID, raw string) (model.Date, bool) {
	if raw == "" {
		return model.Today(), true
	}
	today, err := model.ParseDate(raw)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("today: "+err.Error()))
		return "", false
	}
	return today, true
}

// respondScheduleError maps engine errors onto API errors: cycles are the
// caller's data problem, everything else is ours.
func (s *Server) respondScheduleError(w http.ResponseWriter, reqID string, err error) {
	var cerr *scheduler.CycleError
	if errors.As(err, &cerr) {
		respondError(w, reqID, http.StatusUnprocessableEntity,
			model.NewValidationError(cerr.Error()))
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respondError(w, reqID, http.StatusServiceUnavailable,
			&model.APIError{Code: model.ErrInternal, Message: "optimization cancelled"})
		return
	}
	s.logger.Error("scheduling failed", "error", err)
	respondError(w, reqID, http.StatusInternalServerError,
		&model.APIError{Code: model.ErrInternal, Message: err.Error()})
}
