package graph

import "sort"

// SortResult is the outcome of a topological sort.
type SortResult struct {
	// Order is a full linear extension when IsValid; dependencies always
	// precede their dependents and ties follow original task order.
	Order []string

	// IsValid is false when the graph is cyclic. Callers must refuse to
	// schedule an invalid graph.
	IsValid bool

	// Cycles holds the offending cycles when IsValid is false.
	Cycles [][]string
}

// TopologicalSort produces a deterministic linear extension using Kahn's
// algorithm. The ready queue is kept in original insertion order so fixed
// inputs always yield byte-identical output.
func (g *Graph) TopologicalSort() SortResult {
	index := make(map[string]int, len(g.order))
	for i, id := range g.order {
		index[id] = i
	}

	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		inDegree[id] = 0
	}
	for id, deps := range g.dependsOn {
		for _, dep := range deps {
			if _, ok := g.tasks[dep]; ok {
				inDegree[id]++
			}
		}
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		// Lowest insertion index first keeps ties deterministic.
		sort.Slice(queue, func(i, j int) bool { return index[queue[i]] < index[queue[j]] })
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, succ := range g.dependents[node] {
			if _, ok := g.tasks[succ]; !ok {
				continue
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.order) {
		return SortResult{IsValid: false, Cycles: g.DetectCycles()}
	}
	return SortResult{Order: order, IsValid: true}
}
