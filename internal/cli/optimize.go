package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/roadmap/internal/graph"
	"github.com/me/roadmap/internal/planfile"
	"github.com/me/roadmap/internal/pool"
	"github.com/me/roadmap/internal/scheduler"
	"github.com/me/roadmap/internal/score"
)

func newOptimizeCmd() *cobra.Command {
	var (
		workers    int
		iterations int
		seed       uint64
		exhaustive bool
		budget     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "optimize <plan.yaml>",
		Short: "Search for an assignment beating the greedy baseline",
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

			baseline, err := scheduler.New(logger).Run(plan, today)
			if err != nil {
				return err
			}
			baselineScore := score.Evaluate(graph.New(plan.Tasks), baseline, plan.Milestones)

			cfg := pool.DefaultConfig()
			cfg.Workers = workers
			cfg.IterationsPerWorker = iterations
			if seed != 0 {
				cfg.Seed = seed
			}
			coord := pool.New(cfg, logger)

			var result *pool.Result
			if exhaustive {
				result, err = coord.OptimizeUntil(cmd.Context(), plan, today,
					baseline, baselineScore, time.Now().Add(budget))
			} else {
				result, err = coord.Optimize(cmd.Context(), plan, today, baseline, baselineScore)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSchedule(out, plan, result.Schedule)
			printScore(out, result.Score, len(plan.Milestones))
			printRisks(out, scheduler.DeadlineRisks(result.Schedule, plan.Milestones))

			fmt.Fprintf(out, "\nbaseline:  %s\n", baselineScore)
			fmt.Fprintf(out, "optimized: %s\n", result.Score)
			if result.Improved {
				fmt.Fprintf(out, "improved after %s iterations across %d workers (%d rounds)\n",
					humanize.Comma(result.Iterations), result.Workers, result.Rounds)
			} else {
				fmt.Fprintf(out, "no improvement over the baseline after %s iterations\n",
					humanize.Comma(result.Iterations))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Pool width (default: cores-1)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Annealing iterations per worker per round")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Base RNG seed (0 uses the default)")
	cmd.Flags().BoolVar(&exhaustive, "exhaustive", false, "Keep searching until all milestones are met or the budget elapses")
	cmd.Flags().DurationVar(&budget, "budget", 30*time.Second, "Wall-clock budget for --exhaustive")

	return cmd
}
