package graph

// CriticalPath computes the longest weighted path through the graph using
// the supplied per-task durations (working days). It exists for diagnostics
// only; scheduling never consults it. Cyclic graphs return an empty path.
func (g *Graph) CriticalPath(durations map[string]int) (path []string, length int) {
	sorted := g.TopologicalSort()
	if !sorted.IsValid {
		return nil, 0
	}

	// dist[id] is the longest path ending at id; prev reconstructs it.
	dist := make(map[string]int, len(sorted.Order))
	prev := make(map[string]string, len(sorted.Order))

	for _, id := range sorted.Order {
		best := 0
		bestPrev := ""
		for _, dep := range g.dependsOn[id] {
			if _, ok := g.tasks[dep]; !ok {
				continue
			}
			if dist[dep] > best {
				best = dist[dep]
				bestPrev = dep
			}
		}
		dist[id] = best + durations[id]
		if bestPrev != "" {
			prev[id] = bestPrev
		}
	}

	endID := ""
	for _, id := range sorted.Order {
		if endID == "" || dist[id] > dist[endID] {
			endID = id
		}
	}
	if endID == "" {
		return nil, 0
	}

	for id := endID; id != ""; id = prev[id] {
		path = append([]string{id}, path...)
	}
	return path, dist[endID]
}
