package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/roadmap/internal/effort"
	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/planfile"
)

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <plan.yaml>",
		Short: "Report graph integrity problems and the critical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := planfile.Load(args[0])
			if err != nil {
				return err
			}

			g := graph.New(plan.Tasks)
			diag := g.Integrity(plan.Engineers)
			out := cmd.OutOrStdout()

			clean := true
			for _, cycle := range diag.Cycles {
				clean = false
				fmt.Fprintf(out, "cycle: %s\n", strings.Join(cycle, " -> "))
			}
			for _, orphan := range diag.OrphanedDeps {
				clean = false
				fmt.Fprintf(out, "orphaned dependency: %s -> %s\n", orphan.TaskID, orphan.DependsOn)
			}
			for _, group := range diag.DuplicateTitles {
				clean = false
				fmt.Fprintf(out, "duplicate title: %s\n", strings.Join(group, ", "))
			}
			for _, id := range diag.MissingSize {
				clean = false
				fmt.Fprintf(out, "missing size: %s (default applied)\n", id)
			}
			for _, id := range diag.MissingAssignee {
				clean = false
				fmt.Fprintf(out, "assignee not on roster: %s (treated as external)\n", id)
			}
			if clean {
				fmt.Fprintln(out, "no integrity problems found")
			}

			// A cyclic graph has no critical path.
			if !diag.Schedulable() {
				return fmt.Errorf("%d dependency cycles found", len(diag.Cycles))
			}

			durations := make(map[string]int, len(plan.Tasks))
			for i := range plan.Tasks {
				durations[plan.Tasks[i].ID] = effort.ForTask(&plan.Tasks[i], nil).Days
			}
			path, length := g.CriticalPath(durations)
			fmt.Fprintf(out, "critical path (%d working days): %s\n", length, strings.Join(path, " -> "))
			return nil
		},
	}
}
