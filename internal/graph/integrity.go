package graph

import (
	"sort"
	"strings"

	"github.com/me/roadmap/pkg/model"
)

// Integrity inspects the graph and roster for data problems: cycles,
// orphaned edges, duplicate titles, and missing size or assignee. Findings
// are data, not errors; only cycles make the plan unschedulable.
func (g *Graph) Integrity(engineers []model.Engineer) model.Diagnostics {
	diag := model.Diagnostics{Cycles: g.DetectCycles()}

	roster := make(map[string]bool, len(engineers))
	for _, e := range engineers {
		roster[e.ID] = true
	}

	byTitle := make(map[string][]string)

	for _, id := range g.order {
		t := g.tasks[id]

		for _, dep := range g.dependsOn[id] {
			if _, ok := g.tasks[dep]; !ok {
				diag.OrphanedDeps = append(diag.OrphanedDeps, model.OrphanedDep{
					TaskID:    id,
					DependsOn: dep,
				})
			}
		}

		if t.Title != "" {
			key := strings.ToLower(strings.TrimSpace(t.Title))
			byTitle[key] = append(byTitle[key], id)
		}

		if !t.Resolved && !t.ZeroEffort && !t.HasSize() {
			diag.MissingSize = append(diag.MissingSize, id)
		}
		if t.Assignee != "" && !roster[t.Assignee] {
			diag.MissingAssignee = append(diag.MissingAssignee, id)
		}
	}

	var dupKeys []string
	for key, ids := range byTitle {
		if len(ids) > 1 {
			dupKeys = append(dupKeys, key)
		}
	}
	sort.Strings(dupKeys)
	for _, key := range dupKeys {
		diag.DuplicateTitles = append(diag.DuplicateTitles, byTitle[key])
	}

	return diag
}
