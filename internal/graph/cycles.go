package graph

import "strings"

// DFS colors for cycle detection.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// DetectCycles returns every distinct dependency cycle, including
// self-loops, as task-id slices in path order. Cycles are deduplicated by
// rotation, so A→B→A and B→A→B report once.
func (g *Graph) DetectCycles() [][]string {
	color := make(map[string]int, len(g.order))
	var stack []string
	var cycles [][]string
	seen := make(map[string]bool)

	record := func(cycle []string) {
		key := canonicalCycle(cycle)
		if seen[key] {
			return
		}
		seen[key] = true
		cycles = append(cycles, cycle)
	}

	var visit func(string)
	visit = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		for _, dep := range g.dependsOn[id] {
			if _, ok := g.tasks[dep]; !ok {
				continue // orphaned edge, reported by Integrity
			}
			switch color[dep] {
			case gray:
				// Found a back edge: the cycle is the stack segment from
				// dep to the current node.
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						cycle := append([]string(nil), stack[i:]...)
						record(cycle)
						break
					}
				}
			case white:
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			visit(id)
		}
	}
	return cycles
}

// canonicalCycle rotates a cycle so its smallest id comes first, producing a
// rotation-invariant key.
func canonicalCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i := range cycle {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[min:]...)
	rotated = append(rotated, cycle[:min]...)
	return strings.Join(rotated, "\x00")
}
