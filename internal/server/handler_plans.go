package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/planfile"
	"github.com/me/roadmap/internal/store"
	"github.com/me/roadmap/pkg/model"
)

// handleCreatePlan accepts a plan document (JSON or YAML; JSON is a YAML
// subset so one parser covers both) and persists it.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("read body: "+err.Error()))
		return
	}

	plan, err := planfile.Parse(body)
	if err != nil {
		var verr *planfile.ValidationError
		if errors.As(err, &verr) {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("plan failed validation", verr.Problems...))
			return
		}
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError(err.Error()))
		return
	}

	if err := s.store.CreatePlan(r.Context(), plan); err != nil {
		s.logger.Error("create plan", "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to store plan"})
		return
	}

	s.logger.Info("plan created", "plan_id", plan.ID, "tasks", len(plan.Tasks))
	respondCreated(w, reqID, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.logger.Error("list plans", "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list plans"})
		return
	}
	if plans == nil {
		plans = []*model.Plan{}
	}
	respondOK(w, reqID, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plan, ok := s.loadPlan(w, r, reqID)
	if !ok {
		return
	}
	respondOK(w, reqID, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan", id))
			return
		}
		s.logger.Error("delete plan", "plan_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to delete plan"})
		return
	}
	respondOK(w, reqID, map[string]string{"deleted": id})
}

// handleDiagnostics reports graph integrity: cycles, orphaned dependencies,
// duplicate titles, missing sizes, assignees outside the roster.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	plan, ok := s.loadPlan(w, r, reqID)
	if !ok {
		return
	}

	diag := graph.New(plan.Tasks).Integrity(plan.Engineers)
	respondOK(w, reqID, diag)
}

// loadPlan fetches the plan named by the route, writing the 404/500 response
// itself when the plan cannot be served.
func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request, reqID string) (*model.Plan, bool) {
	id := chi.URLParam(r, "id")

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		s.logger.Error("get plan", "plan_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load plan"})
		return nil, false
	}
	if plan == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan", id))
		return nil, false
	}
	return plan, true
}
