// Package fixture builds plans used by tests across packages.
package fixture

import (
	"fmt"

	"github.com/me/roadmap/pkg/model"
)

// Today is the fixed run date every fixture assumes (a Monday).
const Today = model.Date("2026-01-05")

// SmallPlan returns a plan small enough for exact search: six unresolved
// tasks, two engineers, one milestone.
func SmallPlan() *model.Plan {
	return &model.Plan{
		ID:   "small",
		Name: "small",
		Tasks: []model.Task{
			{ID: "design", Title: "Design", Size: 1},
			{ID: "api", Title: "API", Size: 2, DependsOn: []string{"design"}},
			{ID: "db", Title: "DB", Size: 2, DependsOn: []string{"design"}},
			{ID: "ui", Title: "UI", Size: 2, DependsOn: []string{"api"}},
			{ID: "tests", Title: "Tests", Size: 1, DependsOn: []string{"api", "db"}},
			{ID: "ship", Title: "Ship", ZeroEffort: true, DependsOn: []string{"ui", "tests"}},
		},
		Engineers: []model.Engineer{
			{ID: "alice", Name: "Alice", Availability: 1.0},
			{ID: "bob", Name: "Bob", Availability: 1.0},
		},
		Milestones: []model.Milestone{
			{Name: "v1", AnchorTaskID: "ship", Freeze: "2026-01-23", Deadline: "2026-01-30"},
		},
	}
}

// RoadmapPlan returns the three-milestone roadmap scenario: 28 unresolved
// tasks across three milestone closures, scheduled by four engineers.
func RoadmapPlan() *model.Plan {
	var tasks []model.Task

	// Milestone 1: five work tasks plus a zero-effort release anchor.
	tasks = append(tasks,
		model.Task{ID: "m1-t1", Title: "M1 groundwork", Size: 2},
		model.Task{ID: "m1-t2", Title: "M1 core", Size: 2, DependsOn: []string{"m1-t1"}},
		model.Task{ID: "m1-t3", Title: "M1 polish", Size: 1, DependsOn: []string{"m1-t2"}},
		model.Task{ID: "m1-t4", Title: "M1 docs", Size: 1},
		model.Task{ID: "m1-t5", Title: "M1 rollout", Size: 2},
		model.Task{ID: "m1-release", Title: "M1 release", ZeroEffort: true,
			DependsOn: []string{"m1-t3", "m1-t4", "m1-t5"}},
	)

	// Milestone 2: seven work tasks, anchored behind milestone 1.
	for i := 1; i <= 7; i++ {
		t := model.Task{
			ID:    fmt.Sprintf("m2-t%d", i),
			Title: fmt.Sprintf("M2 feature %d", i),
			Size:  2,
		}
		if i > 1 {
			t.DependsOn = []string{fmt.Sprintf("m2-t%d", i-1)}
		}
		tasks = append(tasks, t)
	}
	tasks = append(tasks, model.Task{ID: "m2-release", Title: "M2 release", ZeroEffort: true,
		DependsOn: []string{"m1-release", "m2-t7"}})

	// Milestone 3: thirteen parallel work tasks plus the anchor.
	var m3Deps []string
	for i := 1; i <= 13; i++ {
		id := fmt.Sprintf("m3-t%d", i)
		tasks = append(tasks, model.Task{
			ID:    id,
			Title: fmt.Sprintf("M3 feature %d", i),
			Size:  2,
		})
		m3Deps = append(m3Deps, id)
	}
	tasks = append(tasks, model.Task{ID: "m3-release", Title: "M3 release", ZeroEffort: true,
		DependsOn: append([]string{"m2-release"}, m3Deps...)})

	return &model.Plan{
		ID:    "roadmap",
		Name:  "roadmap",
		Tasks: tasks,
		Engineers: []model.Engineer{
			{ID: "alice", Name: "Alice", Availability: 1.0},
			{ID: "bob", Name: "Bob", Availability: 1.0},
			{ID: "carol", Name: "Carol", Availability: 0.8},
			{ID: "dan", Name: "Dan", Availability: 1.0,
				Unavailable: []model.DateRange{{Start: "2026-01-19", End: "2026-01-23"}}},
		},
		Milestones: []model.Milestone{
			{Name: "m1", AnchorTaskID: "m1-release", Freeze: "2026-02-16", Deadline: "2026-02-23"},
			{Name: "m2", AnchorTaskID: "m2-release", Freeze: "2026-03-23", Deadline: "2026-03-30"},
			{Name: "m3", AnchorTaskID: "m3-release", Freeze: "2026-09-08", Deadline: "2026-09-15"},
		},
	}
}
