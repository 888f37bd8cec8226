package planfile

import (
	"strings"
	"testing"

	"github.com/me/roadmap/pkg/model"
)

const goodPlan = `
name: q1 roadmap
tasks:
  - id: api
    title: API server
    size: 3
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
    availability: 0.5
    unavailable:
      - start: "2026-01-19"
        end: "2026-01-23"
milestones:
  - name: v1
    anchor_task_id: launch
    deadline: "2026-03-02"
    freeze: "2026-02-23"
`

func TestParse(t *testing.T) {
	plan, err := Parse([]byte(goodPlan))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if plan.ID == "" {
		t.Error("expected generated plan id")
	}
	if plan.Name != "q1 roadmap" {
		t.Errorf("name = %q", plan.Name)
	}
	if len(plan.Tasks) != 3 || len(plan.Engineers) != 2 || len(plan.Milestones) != 1 {
		t.Fatalf("unexpected counts: %d tasks, %d engineers, %d milestones",
			len(plan.Tasks), len(plan.Engineers), len(plan.Milestones))
	}
	if got := plan.Engineer("alice").Availability; got != 1 {
		t.Errorf("omitted availability = %v, want 1", got)
	}
	if got := plan.Engineer("bob").Availability; got != 0.5 {
		t.Errorf("bob availability = %v", got)
	}
	ui := plan.Task("ui")
	if ui == nil || len(ui.DependsOn) != 1 || ui.DependsOn[0] != "api" {
		t.Errorf("ui dependencies not parsed: %+v", ui)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("tasks: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	plan := &model.Plan{
		Tasks: []model.Task{
			{ID: "a", Size: 3},
			{ID: "a", Size: 9},
			{Title: "no id"},
		},
		Engineers: []model.Engineer{
			{ID: "e1", Availability: 1.5},
			{ID: "e1", Availability: 0.5},
		},
		Milestones: []model.Milestone{
			{Name: "m", AnchorTaskID: "missing", Deadline: "2026-01-05", Freeze: "2026-01-12"},
		},
	}

	err := Validate(plan)
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type %T", err)
	}

	wantFragments := []string{
		"duplicate task id",
		"size 9",
		"has no id",
		"availability 1.5",
		"duplicate engineer id",
		`anchor task "missing"`,
		"freeze 2026-01-12 is after deadline",
	}
	joined := strings.Join(verr.Problems, "\n")
	for _, frag := range wantFragments {
		if !strings.Contains(joined, frag) {
			t.Errorf("missing problem containing %q in:\n%s", frag, joined)
		}
	}
}

func TestValidateRosterMustBeAssignable(t *testing.T) {
	plan := &model.Plan{
		Tasks: []model.Task{
			{ID: "a", Size: 2},
			{ID: "b", ZeroEffort: true},
		},
		Engineers: []model.Engineer{
			{ID: "vendor", Availability: 1, External: true},
		},
	}

	err := Validate(plan)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "no assignable entries") {
		t.Errorf("unexpected message %q", err.Error())
	}

	// Fixing the unconstrained task clears the problem.
	plan.Tasks[0].Assignee = "contractor"
	if err := Validate(plan); err != nil {
		t.Errorf("fully constrained plan rejected: %v", err)
	}
}

func TestValidateBadDates(t *testing.T) {
	plan := &model.Plan{
		Tasks: []model.Task{{ID: "a", Size: 1}},
		Engineers: []model.Engineer{{
			ID:           "e",
			Availability: 1,
			Unavailable:  []model.DateRange{{Start: "not-a-date", End: "2026-01-05"}},
		}},
		Milestones: []model.Milestone{
			{Name: "m", AnchorTaskID: "a", Deadline: "2026/01/05", Freeze: "2026-01-01"},
		},
	}
	err := Validate(plan)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid plan") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateEmptyPlan(t *testing.T) {
	if err := Validate(&model.Plan{}); err == nil {
		t.Fatal("expected error for empty plan")
	}
}
