package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/me/roadmap/internal/config"
	"github.com/me/roadmap/internal/store"
	"github.com/me/roadmap/pkg/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(t.Context()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultServerConfig()
	cfg.Workers = 2
	return New(cfg, st, logger)
}

const planYAML = `
name: test roadmap
tasks:
  - id: api
    title: API server
    size: 2
  - id: ui
    title: Web UI
    size: 2
    depends_on: [api]
  - id: launch
    title: Launch
    depends_on: [ui]
    zero_effort: true
engineers:
  - id: alice
    name: Alice
  - id: bob
    name: Bob
milestones:
  - name: v1
    anchor_task_id: launch
    deadline: "2026-03-02"
    freeze: "2026-02-23"
`

// doJSON performs a request and decodes the standard envelope.
func doJSON(t *testing.T, s *Server, method, path, body string) (int, model.Response) {
	t.Helper()
	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp model.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope from %s %s: %v\nbody: %s", method, path, err, rec.Body.String())
	}
	return rec.Code, resp
}

func createPlan(t *testing.T, s *Server) string {
	t.Helper()
	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans", planYAML)
	if code != http.StatusCreated {
		t.Fatalf("create plan: status %d, error %+v", code, resp.Error)
	}
	data := resp.Data.(map[string]any)
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatal("created plan has no id")
	}
	return id
}

func TestCreateAndGetPlan(t *testing.T) {
	s := newTestServer(t)
	id := createPlan(t, s)

	code, resp := doJSON(t, s, http.MethodGet, "/api/v1/plans/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("get plan: status %d", code)
	}
	data := resp.Data.(map[string]any)
	if data["name"] != "test roadmap" {
		t.Errorf("name = %v", data["name"])
	}
	if resp.RequestID == "" || !strings.HasPrefix(resp.RequestID, "req_") {
		t.Errorf("request id = %q", resp.RequestID)
	}

	code, resp = doJSON(t, s, http.MethodGet, "/api/v1/plans/", "")
	if code != http.StatusOK {
		t.Fatalf("list plans: status %d", code)
	}
	if list, ok := resp.Data.([]any); !ok || len(list) != 1 {
		t.Errorf("expected 1 plan in list, got %v", resp.Data)
	}
}

func TestCreatePlanValidationFailure(t *testing.T) {
	s := newTestServer(t)

	bad := strings.Replace(planYAML, "anchor_task_id: launch", "anchor_task_id: nonexistent", 1)
	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans", bad)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrValidation {
		t.Fatalf("error = %+v", resp.Error)
	}
	if len(resp.Error.Details) == 0 || !strings.Contains(resp.Error.Details[0], "nonexistent") {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	s := newTestServer(t)

	code, resp := doJSON(t, s, http.MethodGet, "/api/v1/plans/nope", "")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestDeletePlan(t *testing.T) {
	s := newTestServer(t)
	id := createPlan(t, s)

	code, _ := doJSON(t, s, http.MethodDelete, "/api/v1/plans/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("delete: status %d", code)
	}
	code, _ = doJSON(t, s, http.MethodGet, "/api/v1/plans/"+id, "")
	if code != http.StatusNotFound {
		t.Errorf("plan survived deletion: status %d", code)
	}

	code, resp := doJSON(t, s, http.MethodDelete, "/api/v1/plans/"+id, "")
	if code != http.StatusNotFound {
		t.Errorf("double delete: status %d", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrNotFound {
		t.Errorf("double delete error = %+v", resp.Error)
	}
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)

	withOrphan := strings.Replace(planYAML, "depends_on: [api]", "depends_on: [api, ghost]", 1)
	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans", withOrphan)
	if code != http.StatusCreated {
		t.Fatalf("create: status %d, error %+v", code, resp.Error)
	}
	id := resp.Data.(map[string]any)["id"].(string)

	code, resp = doJSON(t, s, http.MethodGet, "/api/v1/plans/"+id+"/diagnostics", "")
	if code != http.StatusOK {
		t.Fatalf("diagnostics: status %d", code)
	}
	var diag model.Diagnostics
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &diag); err != nil {
		t.Fatalf("decode diagnostics: %v", err)
	}
	if len(diag.OrphanedDeps) != 1 || diag.OrphanedDeps[0].DependsOn != "ghost" {
		t.Errorf("orphaned deps = %+v", diag.OrphanedDeps)
	}
}

func TestScheduleRun(t *testing.T) {
	s := newTestServer(t)
	id := createPlan(t, s)

	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans/"+id+"/schedule",
		`{"today":"2026-01-05"}`)
	if code != http.StatusCreated {
		t.Fatalf("schedule: status %d, error %+v", code, resp.Error)
	}

	var rresp runResponse
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &rresp); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if rresp.Run == nil || rresp.Run.Kind != model.RunKindGreedy {
		t.Fatalf("run = %+v", rresp.Run)
	}
	if rresp.Run.Schedule == nil || len(rresp.Run.Schedule.Assignments) != 3 {
		t.Fatalf("schedule = %+v", rresp.Run.Schedule)
	}
	if rresp.Run.Score.DeadlinesMet != 1 {
		t.Errorf("deadlines met = %d", rresp.Run.Score.DeadlinesMet)
	}

	// The run is persisted and fetchable.
	code, resp = doJSON(t, s, http.MethodGet, "/api/v1/runs/"+rresp.Run.ID, "")
	if code != http.StatusOK {
		t.Fatalf("get run: status %d", code)
	}

	code, resp = doJSON(t, s, http.MethodGet, "/api/v1/plans/"+id+"/runs", "")
	if code != http.StatusOK {
		t.Fatalf("list runs: status %d", code)
	}
	if list, ok := resp.Data.([]any); !ok || len(list) != 1 {
		t.Errorf("expected 1 run, got %v", resp.Data)
	}
}

func TestScheduleRejectsBadToday(t *testing.T) {
	s := newTestServer(t)
	id := createPlan(t, s)

	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans/"+id+"/schedule",
		`{"today":"sometime"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, error %+v", code, resp.Error)
	}
}

func TestScheduleCyclicPlan(t *testing.T) {
	s := newTestServer(t)

	cyclic := strings.Replace(planYAML, "title: API server\n    size: 2",
		"title: API server\n    size: 2\n    depends_on: [ui]", 1)
	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans", cyclic)
	if code != http.StatusCreated {
		t.Fatalf("create: status %d, error %+v", code, resp.Error)
	}
	id := resp.Data.(map[string]any)["id"].(string)

	code, resp = doJSON(t, s, http.MethodPost, "/api/v1/plans/"+id+"/schedule", "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, error %+v", code, resp.Error)
	}
	if resp.Error == nil || !strings.Contains(resp.Error.Message, "cycle") {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestOptimizeRun(t *testing.T) {
	s := newTestServer(t)
	id := createPlan(t, s)

	code, resp := doJSON(t, s, http.MethodPost, "/api/v1/plans/"+id+"/optimize",
		`{"today":"2026-01-05"}`)
	if code != http.StatusCreated {
		t.Fatalf("optimize: status %d, error %+v", code, resp.Error)
	}

	var rresp runResponse
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &rresp); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if rresp.Run.Kind != model.RunKindOptimize {
		t.Errorf("kind = %v", rresp.Run.Kind)
	}
	if rresp.Run.Schedule == nil {
		t.Fatal("optimize run has no schedule")
	}
	if rresp.Run.Score.DeadlinesMet < 1 {
		t.Errorf("optimized result lost the baseline's deadline: %+v", rresp.Run.Score)
	}
}

func TestOptimizeConcurrentRequests(t *testing.T) {
	s := newTestServer(t)
	ids := []string{createPlan(t, s), createPlan(t, s), createPlan(t, s)}

	// Each request gets its own coordinator; overlapping optimizations of
	// different plans must not trample each other's worker state.
	codes := make(chan int, len(ids)*2)
	for i := 0; i < len(ids)*2; i++ {
		go func(id string) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/"+id+"/optimize",
				strings.NewReader(`{"today":"2026-01-05"}`))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			codes <- rec.Code
		}(ids[i%len(ids)])
	}
	for i := 0; i < len(ids)*2; i++ {
		if code := <-codes; code != http.StatusCreated {
			t.Errorf("concurrent optimize: status %d", code)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	id := rec.Header().Get("X-Request-ID")
	if !strings.HasPrefix(id, "req_") || len(id) != len("req_")+8 {
		t.Errorf("X-Request-ID = %q", id)
	}

	var resp model.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if resp.RequestID != id {
		t.Errorf("envelope request id %q != header %q", resp.RequestID, id)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz: status %d", rec.Code)
	}

	code, resp := doJSON(t, s, http.MethodGet, "/api/v1/health", "")
	if code != http.StatusOK {
		t.Fatalf("health: status %d", code)
	}
	data := resp.Data.(map[string]any)
	if data["status"] != "healthy" || data["store"] != "ok" {
		t.Errorf("health data = %v", data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in output")
	}
}
