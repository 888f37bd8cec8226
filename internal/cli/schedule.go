package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/planfile"
	"github.com/me/roadmap/internal/scheduler"
	"github.com/me/roadmap/internal/score"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <plan.yaml>",
		Short: "Compute the deterministic greedy schedule for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			today, err := resolveToday()
			if err != nil {
				return err
			}

			sched, err := scheduler.New(logger).Run(plan, today)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSchedule(out, plan, sched)
			sc := score.Evaluate(graph.New(plan.Tasks), sched, plan.Milestones)
			printScore(out, sc, len(plan.Milestones))
			printRisks(out, scheduler.DeadlineRisks(sched, plan.Milestones))
			fmt.Fprintln(out)
			return nil
		},
	}
}
