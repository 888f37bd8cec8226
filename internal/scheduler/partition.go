package scheduler

import (
	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/pkg/model"
)

// Partition maps each task to the single milestone it serves: the
// earliest-deadline milestone whose transitive dependency closure contains
// it. Tasks unreachable from every anchor are absent from the map.
func Partition(g *graph.Graph, milestones []model.Milestone) map[string]string {
	membership := make(map[string]string)
	for _, m := range model.SortMilestones(milestones) {
		for id := range g.Closure(m.AnchorTaskID) {
			if _, claimed := membership[id]; !claimed {
				membership[id] = m.Name
			}
		}
	}
	return membership
}

// ProcessOrder returns task ids grouped by milestone in ascending deadline
// order, tasks unreachable from any milestone last, and within each group in
// topological order. topo must be a valid linear extension of g.
func ProcessOrder(g *graph.Graph, topo []string, milestones []model.Milestone) []string {
	membership := Partition(g, milestones)

	order := make([]string, 0, len(topo))
	for _, m := range model.SortMilestones(milestones) {
		for _, id := range topo {
			if membership[id] == m.Name {
				order = append(order, id)
			}
		}
	}
	for _, id := range topo {
		if _, ok := membership[id]; !ok {
			order = append(order, id)
		}
	}
	return order
}
