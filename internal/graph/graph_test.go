package graph

import (
	"reflect"
	"testing"

	"github.com/me/roadmap/pkg/model"
)

func task(id string, deps ...string) model.Task {
	return model.Task{ID: id, Size: 2, DependsOn: deps}
}

func TestDependenciesAndDependents(t *testing.T) {
	g := New([]model.Task{
		task("a"),
		task("b", "a"),
		task("c", "a", "b"),
	})

	if got := g.Dependencies("c"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Dependencies(c) = %v, want [a b]", got)
	}
	if got := g.Dependents("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Dependents(a) = %v, want [b c]", got)
	}

	// Unknown ids return empty, never fail.
	if got := g.Dependencies("nope"); len(got) != 0 {
		t.Errorf("Dependencies(nope) = %v, want empty", got)
	}
	if got := g.Dependents("nope"); len(got) != 0 {
		t.Errorf("Dependents(nope) = %v, want empty", got)
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New(nil)
	g.AddNode(task("a"))
	g.AddNode(model.Task{ID: "a", DependsOn: []string{"b"}})

	if g.Len() != 1 {
		t.Fatalf("Len = %d, want 1", g.Len())
	}
	if deps := g.Dependencies("a"); len(deps) != 0 {
		t.Errorf("second AddNode must not rewrite edges, got deps %v", deps)
	}
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	g := New([]model.Task{task("a", "a")})

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly one", cycles)
	}
	if !reflect.DeepEqual(cycles[0], []string{"a"}) {
		t.Errorf("cycle = %v, want [a]", cycles[0])
	}
}

func TestDetectCycles_TwoNode(t *testing.T) {
	g := New([]model.Task{
		task("a", "b"),
		task("b", "a"),
	})

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want one deduplicated cycle", cycles)
	}
	if len(cycles[0]) != 2 {
		t.Errorf("cycle = %v, want both nodes", cycles[0])
	}
	found := map[string]bool{}
	for _, id := range cycles[0] {
		found[id] = true
	}
	if !found["a"] || !found["b"] {
		t.Errorf("cycle = %v, want a and b", cycles[0])
	}
}

func TestDetectCycles_MultipleDistinct(t *testing.T) {
	g := New([]model.Task{
		task("a", "b"),
		task("b", "a"),
		task("c", "c"),
		task("d"),
	})

	cycles := g.DetectCycles()
	if len(cycles) != 2 {
		t.Fatalf("cycles = %v, want two distinct cycles", cycles)
	}
}

func TestTopologicalSort_Valid(t *testing.T) {
	tasks := []model.Task{
		task("d", "b", "c"),
		task("b", "a"),
		task("c", "a"),
		task("a"),
	}
	g := New(tasks)

	res := g.TopologicalSort()
	if !res.IsValid {
		t.Fatalf("IsValid = false, cycles = %v", res.Cycles)
	}
	if len(res.Order) != len(tasks) {
		t.Fatalf("Order length = %d, want %d", len(res.Order), len(tasks))
	}

	pos := map[string]int{}
	for i, id := range res.Order {
		pos[id] = i
	}
	for _, tk := range tasks {
		for _, dep := range tk.DependsOn {
			if pos[dep] >= pos[tk.ID] {
				t.Errorf("dependency %s at %d does not precede %s at %d", dep, pos[dep], tk.ID, pos[tk.ID])
			}
		}
	}

	// Ties (b vs c) follow original insertion order: b first.
	if pos["b"] > pos["c"] {
		t.Errorf("tie order = %v, want b before c", res.Order)
	}
}

func TestTopologicalSort_Cyclic(t *testing.T) {
	g := New([]model.Task{
		task("a", "b"),
		task("b", "a"),
	})

	res := g.TopologicalSort()
	if res.IsValid {
		t.Fatal("IsValid = true for a cyclic graph")
	}
	if len(res.Cycles) == 0 {
		t.Error("Cycles empty for a cyclic graph")
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	tasks := []model.Task{
		task("m"), task("z"), task("a"),
		task("k", "m"), task("q", "z", "a"),
	}
	first := New(tasks).TopologicalSort()
	for i := 0; i < 10; i++ {
		again := New(tasks).TopologicalSort()
		if !reflect.DeepEqual(first.Order, again.Order) {
			t.Fatalf("run %d order = %v, first = %v", i, again.Order, first.Order)
		}
	}
}

func TestCriticalPath(t *testing.T) {
	g := New([]model.Task{
		task("a"),
		task("b", "a"),
		task("c", "a"),
		task("d", "b", "c"),
	})
	durations := map[string]int{"a": 2, "b": 5, "c": 1, "d": 3}

	path, length := g.CriticalPath(durations)
	if want := []string{"a", "b", "d"}; !reflect.DeepEqual(path, want) {
		t.Errorf("path = %v, want %v", path, want)
	}
	if length != 10 {
		t.Errorf("length = %d, want 10", length)
	}
}

func TestClosure(t *testing.T) {
	g := New([]model.Task{
		task("a"),
		task("b", "a"),
		task("c", "b"),
		task("x"),
	})

	cl := g.Closure("c")
	for _, id := range []string{"a", "b", "c"} {
		if !cl[id] {
			t.Errorf("closure missing %s: %v", id, cl)
		}
	}
	if cl["x"] {
		t.Errorf("closure includes unrelated task x: %v", cl)
	}
	if len(g.Closure("nope")) != 0 {
		t.Error("closure of unknown id should be empty")
	}
}

func TestIntegrity(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Title: "Build API", Size: 2},
		{ID: "b", Title: "build api", Size: 3, DependsOn: []string{"ghost"}},
		{ID: "c"},                              // unresolved, no size
		{ID: "d", Size: 1, Assignee: "nobody"}, // assignee off roster
		{ID: "e", ZeroEffort: true},            // zero-effort needs no size
	}
	engineers := []model.Engineer{{ID: "alice", Name: "Alice", Availability: 1}}

	diag := New(tasks).Integrity(engineers)

	if len(diag.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", diag.Cycles)
	}
	if len(diag.OrphanedDeps) != 1 || diag.OrphanedDeps[0].DependsOn != "ghost" {
		t.Errorf("OrphanedDeps = %v, want [b->ghost]", diag.OrphanedDeps)
	}
	if len(diag.DuplicateTitles) != 1 || len(diag.DuplicateTitles[0]) != 2 {
		t.Errorf("DuplicateTitles = %v, want one group of two", diag.DuplicateTitles)
	}
	if !reflect.DeepEqual(diag.MissingSize, []string{"c"}) {
		t.Errorf("MissingSize = %v, want [c]", diag.MissingSize)
	}
	if !reflect.DeepEqual(diag.MissingAssignee, []string{"d"}) {
		t.Errorf("MissingAssignee = %v, want [d]", diag.MissingAssignee)
	}
	if !diag.Schedulable() {
		t.Error("Schedulable = false for acyclic graph")
	}
}
