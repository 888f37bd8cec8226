// Package graph builds the task dependency graph and answers structural
// queries: cycles, topological order, critical path, and data-integrity
// findings. Graph operations never fail; malformed structure is surfaced as
// diagnostics and a cyclic graph simply refuses to produce a valid order.
package graph

import (
	"github.com/me/roadmap/pkg/model"
)

// Graph is a directed dependency graph over task ids. Edges run from a
// dependency to its dependent: A -> B means B depends on A.
type Graph struct {
	order      []string // insertion order, used for deterministic tie-breaks
	tasks      map[string]model.Task
	dependsOn  map[string][]string // direct dependencies, insertion order
	dependents map[string][]string // direct dependents, insertion order
}

// New builds a graph from a task list. Edge targets missing from the list
// are kept (they surface as orphaned deps in Integrity) but create no node.
func New(tasks []model.Task) *Graph {
	g := &Graph{
		tasks:      make(map[string]model.Task, len(tasks)),
		dependsOn:  make(map[string][]string, len(tasks)),
		dependents: make(map[string][]string, len(tasks)),
	}
	for _, t := range tasks {
		g.AddNode(t)
	}
	return g
}

// AddNode registers a task and its incoming edges. Adding the same id twice
// is a no-op; the first registration wins.
func (g *Graph) AddNode(t model.Task) {
	if _, ok := g.tasks[t.ID]; ok {
		return
	}
	g.tasks[t.ID] = t
	g.order = append(g.order, t.ID)

	seen := make(map[string]bool, len(t.DependsOn))
	for _, dep := range t.DependsOn {
		if dep == "" || seen[dep] {
			continue
		}
		seen[dep] = true
		g.dependsOn[t.ID] = append(g.dependsOn[t.ID], dep)
		g.dependents[dep] = append(g.dependents[dep], t.ID)
	}
}

// Len returns the number of registered tasks.
func (g *Graph) Len() int { return len(g.order) }

// Task returns the registered task and whether it exists.
func (g *Graph) Task(id string) (model.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Dependencies returns the direct dependencies of a task. Unknown ids
// return an empty slice, never an error.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.dependsOn[id]...)
}

// Dependents returns the tasks that directly depend on id.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// Closure returns the transitive dependency closure of id, including id
// itself when it is a known task. Unknown ids return an empty set.
func (g *Graph) Closure(id string) map[string]bool {
	out := make(map[string]bool)
	if _, ok := g.tasks[id]; !ok {
		return out
	}
	var walk func(string)
	walk = func(cur string) {
		if out[cur] {
			return
		}
		out[cur] = true
		for _, dep := range g.dependsOn[cur] {
			if _, ok := g.tasks[dep]; ok {
				walk(dep)
			}
		}
	}
	walk(id)
	return out
}
